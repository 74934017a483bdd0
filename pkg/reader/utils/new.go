package readerutils

import (
	"fmt"

	"github.com/mcpress/mcpress/pkg/reader"
	"github.com/mcpress/mcpress/pkg/reader/jina"
	"github.com/mcpress/mcpress/pkg/reader/readability"
)

type NewReaderOpts struct {
	ProviderType string
	TargetURL    string
}

func NewReader(o *NewReaderOpts) (reader.Reader, error) {
	switch o.ProviderType {
	case "jina":
		return jina.New(o.TargetURL), nil
	case "readability":
		return readability.New(), nil
	default:
		return nil, fmt.Errorf("unsupported reader provider: %s", o.ProviderType)
	}
}
