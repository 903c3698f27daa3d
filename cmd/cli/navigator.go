package cli

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/westmarch-io/westmarch/internal/models"
)

// Destination is where the user lands after a session transition.
type Destination string

const (
	DestinationNone      Destination = ""
	DestinationDashboard Destination = "dashboard"
	DestinationLogin     Destination = "login"
)

// navigator reacts to session events the way the web app redirects:
// login lands on the dashboard, logout lands on the login page.
type navigator struct {
	out io.Writer
}

func newNavigator(out io.Writer) *navigator {
	return &navigator{out: out}
}

func destinationFor(event models.Event) Destination {
	switch event.Kind {
	case models.EventLogin:
		return DestinationDashboard
	case models.EventLogout:
		return DestinationLogin
	default:
		return DestinationNone
	}
}

func (n *navigator) Handle(event models.Event) {
	destination := destinationFor(event)

	logrus.WithFields(logrus.Fields{
		"event":       string(event.Kind),
		"state":       event.State.String(),
		"destination": string(destination),
	}).Debugln("Session event")

	switch destination {
	case DestinationDashboard:
		fmt.Fprintln(n.out, successStyle.Render(fmt.Sprintf("Welcome, %s!", displayName(event.Identity))))
		fmt.Fprintln(n.out, mutedStyle.Render("Next: 'westmarch characters --mine' to see your characters"))
	case DestinationLogin:
		fmt.Fprintln(n.out, infoStyle.Render("You are logged out."))
		fmt.Fprintln(n.out, mutedStyle.Render("Run 'westmarch login' to sign in"))
	}
}

// displayName prefers the username and falls back to the user id.
func displayName(identity *models.Identity) string {
	if identity != nil && len(identity.Username) > 0 {
		return identity.Username
	}
	return identity.String()
}
