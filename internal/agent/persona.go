package agent

// Short persona ids sent by the client, mapped to the display names the
// debate agent announces itself with.
var personaDisplayNames = map[string]string{
	"socrates":    "AI Socrates",
	"einstein":    "AI Einstein",
	"trump":       "AI Trump",
	"shakespeare": "AI Shakespeare",
	"tesla":       "AI Tesla",
	"churchill":   "AI Churchill",
	"gandhi":      "AI Gandhi",
	"jobs":        "AI Steve Jobs",
}

// PersonaDisplayName resolves a persona id to its display name. Unknown ids
// pass through unchanged so custom personas keep working.
func PersonaDisplayName(id string) string {
	if name, exist := personaDisplayNames[id]; exist {
		return name
	}
	return id
}
