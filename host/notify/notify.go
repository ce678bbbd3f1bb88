// Package notify shows host errors as native modal dialogs.
package notify

import (
	"log"

	"github.com/sqweek/dialog"
)

// Dialog is a host.Notifier using the platform message box.
type Dialog struct {
	// AppName prefixes every dialog title.
	AppName string
}

// ShowError logs the message and shows it in a blocking error dialog.
func (d Dialog) ShowError(title, message string) {
	if d.AppName != "" {
		title = d.AppName + ": " + title
	}
	log.Printf("%s: %s", title, message)
	dialog.Message("%s", message).Title(title).Error()
}

// Log is a host.Notifier for headless hosts that only logs.
type Log struct{}

func (Log) ShowError(title, message string) {
	log.Printf("%s: %s", title, message)
}
