package main

import (
	"os"
	"strings"

	"github.com/posener/complete"

	"code.selman.me/uniqname/internal/config"
	"code.selman.me/uniqname/locale"
)

type localePredictor struct{}

func (p localePredictor) Predict(a complete.Args) []string {
	cfg, err := loadConfig(configFromCompletionArgs(a))
	if err != nil {
		cfg = config.Default()
	}

	entries := locale.Merge(locale.Builtin(), cfg.Templates)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Locale)
	}
	return out
}

func configFromCompletionArgs(a complete.Args) string {
	for i := 0; i < len(a.All); i++ {
		arg := a.All[i]
		if arg == "--config" && i+1 < len(a.All) {
			return a.All[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if path := os.Getenv("UNIQNAME_CONFIG"); path != "" {
		return path
	}
	return ""
}
