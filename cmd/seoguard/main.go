package main

import (
	"os"

	"horse.fit/seoguard/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
