package main

import (
	"curseforge-mod-updater/cmd"
	"curseforge-mod-updater/logger"
)

func main() {
	defer logger.Sync() // Ensure logs are flushed on exit
	cmd.Execute()
}
