// Package tokenizer provides the budget size metric. Token counting uses
// the cl100k_base encoding; when the encoding cannot be loaded (offline
// start, missing cache) it degrades to a character approximation. The
// choice is made once at construction so budgeting stays deterministic.
package tokenizer

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"

	"github.com/inklyn/docchat/internal/core/ports"
)

func New() ports.Sizer {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		slog.Warn("token_encoding_unavailable", "error", err)
		return charSizer{}
	}
	return &tokenSizer{enc: enc}
}

type tokenSizer struct {
	enc *tiktoken.Tiktoken
}

func (s *tokenSizer) Size(text string) int {
	if text == "" {
		return 0
	}
	return len(s.enc.Encode(text, nil, nil))
}

// charSizer approximates tokens as ceil(len/4), the usual rule of thumb
// for English text.
type charSizer struct{}

func (charSizer) Size(text string) int {
	return (len(text) + 3) / 4
}
