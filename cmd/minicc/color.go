package main

import "github.com/fatih/color"

func disableColor() {
	color.NoColor = true
}
