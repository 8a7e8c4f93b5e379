package cli

import (
	"fmt"
	"strings"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

type Format string

const (
	FormatText Format = "Text"
	FormatJSON Format = "JSON"
)

func outputFormat(value string) (Format, error) {
	switch {
	case value == "" || strings.EqualFold(value, string(FormatText)):
		return FormatText, nil
	case strings.EqualFold(value, string(FormatJSON)):
		return FormatJSON, nil
	}
	return "", fmt.Errorf("output format not implemented: %s", value)
}

func Render(format Format, reports []mediainfo.Report) string {
	if format == FormatJSON {
		return mediainfo.RenderJSON(reports)
	}
	return mediainfo.RenderText(reports)
}
