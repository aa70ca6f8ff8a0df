// Package debug holds process-wide debug switches read from the environment.
package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Build bool
	LFF   bool
	Edit  bool
	Store bool
}

var d *debug

func init() {
	d = &debug{}
	d.Build = boolEnv("GLOTTREE_DEBUG_BUILD")
	d.LFF = boolEnv("GLOTTREE_DEBUG_LFF")
	d.Edit = boolEnv("GLOTTREE_DEBUG_EDIT")
	d.Store = boolEnv("GLOTTREE_DEBUG_STORE")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Build() bool {
	return d.Build
}
func LFF() bool {
	return d.LFF
}
func Edit() bool {
	return d.Edit
}
func Store() bool {
	return d.Store
}
