package main

import "taskbot/internal/app"

func main() {
	app.Run()
}
