package chat

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"

	"github.com/thebardchat/angel-cloud/pkg/model"
)

//go:embed prompt/logibot.md
var logibotPromptRaw string

//go:embed prompt/shanebrain.md
var shanebrainPromptRaw string

//go:embed prompt/angel.md
var angelPromptRaw string

//go:embed prompt/crisis.md
var crisisNoteRaw string

//go:embed prompt/layout.md
var layoutRaw string

var layoutTmpl = template.Must(template.New("layout").Parse(layoutRaw))

var personas = map[model.Mode]string{
	model.ModeLogibot:    strings.TrimSpace(logibotPromptRaw),
	model.ModeShanebrain: strings.TrimSpace(shanebrainPromptRaw),
	model.ModeAngel:      strings.TrimSpace(angelPromptRaw),
}

type promptData struct {
	Persona    string
	Crisis     bool
	CrisisNote string
	Context    string
	Message    string
}

// renderPrompt assembles the generation prompt: persona first, the crisis
// note when the screen tripped, retrieved background when any was packed,
// then the user message.
func renderPrompt(mode model.Mode, contextText, message string, crisis bool) (string, error) {
	persona, ok := personas[mode]
	if !ok {
		persona = personas[model.DefaultMode]
	}

	var buf bytes.Buffer
	err := layoutTmpl.Execute(&buf, promptData{
		Persona:    persona,
		Crisis:     crisis,
		CrisisNote: strings.TrimSpace(crisisNoteRaw),
		Context:    contextText,
		Message:    message,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to render prompt", goerr.V("mode", mode))
	}

	return buf.String(), nil
}

// RenderPromptForTest is a test helper that exposes renderPrompt
func RenderPromptForTest(mode model.Mode, contextText, message string, crisis bool) (string, error) {
	return renderPrompt(mode, contextText, message, crisis)
}
