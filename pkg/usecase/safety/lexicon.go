package safety

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"

	"github.com/thebardchat/angel-cloud/pkg/model"
)

//go:embed lexicon.yml
var defaultLexiconRaw []byte

// Lexicon holds the word lists that drive classification. Crisis entries
// match as case-insensitive substrings; positive and negative entries match
// whole tokens only.
type Lexicon struct {
	Crisis   []string `yaml:"crisis"`
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// DefaultLexicon returns the built-in word lists.
func DefaultLexicon() *Lexicon {
	var lex Lexicon
	if err := yaml.Unmarshal(defaultLexiconRaw, &lex); err != nil {
		panic("built-in lexicon is malformed: " + err.Error())
	}
	return &lex
}

// LoadLexicon reads word lists from a YAML file so that deployments can
// swap or localize them without a rebuild.
func LoadLexicon(path string) (*Lexicon, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, goerr.Wrap(err, "lexicon file does not exist",
			goerr.V("path", path), goerr.T(model.ErrTagConfig))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read lexicon file",
			goerr.V("path", path), goerr.T(model.ErrTagConfig))
	}

	var lex Lexicon
	if err := yaml.Unmarshal(raw, &lex); err != nil {
		return nil, goerr.Wrap(err, "failed to parse lexicon file",
			goerr.V("path", path), goerr.T(model.ErrTagConfig))
	}

	return &lex, nil
}
