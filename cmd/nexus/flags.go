package main

import "time"

// GlobalFlags are persistent on the root command and shared by every
// subcommand. A non-empty APIUrl sends requests to a running `nexus serve`
// instead of launching the engine locally.
type GlobalFlags struct {
	ConfigPath string
	EnginePath string
	Timeout    time.Duration
	APIUrl     string
	JSON       bool
}

// AddFlags holds the record for the add command.
type AddFlags struct {
	ID       string
	Arrival  int
	Burst    int
	Priority int
}

// RunFlags holds an optional submitted process set, each entry formatted
// as id:arrival:burst[:priority].
type RunFlags struct {
	Processes []string
}

type ServeFlags struct {
	Listen   string
	BasePath string
}
