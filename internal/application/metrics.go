package application

import "expvar"

// authStats is published under /debug/vars as "auth".
var authStats = expvar.NewMap("auth")

func count(name string) { authStats.Add(name, 1) }
