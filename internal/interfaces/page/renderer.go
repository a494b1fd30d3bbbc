package page

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"txview/internal/application"
	"txview/internal/domain"
)

const (
	DefaultExplorerTxURL = "https://testnet.ping.pub/elys/tx/{hash}"
	hashPlaceholder      = "{hash}"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer struct {
	explorerTxURL string
	templates     *template.Template
}

func NewRenderer(explorerTxURL string) (*Renderer, error) {
	if strings.TrimSpace(explorerTxURL) == "" {
		explorerTxURL = DefaultExplorerTxURL
	}
	r := &Renderer{explorerTxURL: explorerTxURL}
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"explorerLink": r.ExplorerLink,
		"yesNo":        yesNo,
		"joinComma":    joinComma,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.templates = tmpl
	return r, nil
}

// ExplorerLink substitutes hash into the explorer URL template, appending it
// when the template has no placeholder.
func (r *Renderer) ExplorerLink(hash string) string {
	if strings.Contains(r.explorerTxURL, hashPlaceholder) {
		return strings.ReplaceAll(r.explorerTxURL, hashPlaceholder, hash)
	}
	return strings.TrimSuffix(r.explorerTxURL, "/") + "/" + hash
}

// RenderFragment writes the transaction view for state without any page chrome.
func (r *Renderer) RenderFragment(w io.Writer, state application.ViewState) error {
	return r.execute(w, "fragment", newViewModel(state))
}

// RenderPage writes a complete HTML document around the fragment.
func (r *Renderer) RenderPage(w io.Writer, state application.ViewState) error {
	return r.execute(w, "document", newViewModel(state))
}

// execute renders into a buffer first so a template failure never leaves a
// half-written response.
func (r *Renderer) execute(w io.Writer, name string, model viewModel) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, model); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

type viewModel struct {
	Loading bool
	Error   string
	Groups  []domain.MessageTypeGroup
}

func newViewModel(state application.ViewState) viewModel {
	switch state.Phase {
	case application.PhaseFailed:
		message := state.Error
		if message == "" {
			message = application.FailureMessage
		}
		return viewModel{Error: message}
	case application.PhaseReady:
		return viewModel{Groups: state.Transactions.Groups()}
	default:
		return viewModel{Loading: true}
	}
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func joinComma(values []string) string {
	return strings.Join(values, ", ")
}
