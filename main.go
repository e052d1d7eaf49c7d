package main

import "github.com/pulsedcm/pulsedcm/cmd/pulsedcm"

func main() { pulsedcm.Execute() }
