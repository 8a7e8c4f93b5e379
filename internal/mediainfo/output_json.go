package mediainfo

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type jsonKV struct {
	Key string
	Val string
	Raw bool
}

func RenderJSON(reports []Report) string {
	if len(reports) == 1 {
		return renderJSONPayload(reports[0]) + "\n"
	}
	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, report := range reports {
		if i > 0 {
			buf.WriteString(",\n")
		}
		buf.WriteString(renderJSONPayload(report))
	}
	buf.WriteString("\n]\n")
	return buf.String()
}

func jsonCreatingLibraryFields() []jsonKV {
	return []jsonKV{
		{Key: "name", Val: AppName},
		{Key: "version", Val: FormatVersion(AppVersion)},
		{Key: "url", Val: AppURL},
	}
}

func renderJSONPayload(report Report) string {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	writeJSONField(&buf, "creatingLibrary", renderJSONObject(jsonCreatingLibraryFields(), false), true)
	buf.WriteString(",\n")
	writeJSONField(&buf, "media", renderJSONMedia(report), true)
	buf.WriteString("\n}")
	return buf.String()
}

func renderJSONMedia(report Report) string {
	tracks := []string{renderJSONObject(jsonTrackFields(report.General, 0), true)}
	forEachStreamWithKindIndex(report.Streams, func(stream Stream, index, total int) {
		typeOrder := 0
		if total > 1 {
			typeOrder = index
		}
		tracks = append(tracks, renderJSONObject(jsonTrackFields(stream, typeOrder), true))
	})

	var buf bytes.Buffer
	buf.WriteString("{")
	writeJSONField(&buf, "@ref", report.Ref, false)
	buf.WriteString(",")
	buf.WriteString("\n")
	writeJSONField(&buf, "track", "[\n"+joinJSON(tracks, ",\n")+"\n]", true)
	buf.WriteString("}")
	return buf.String()
}

func jsonTrackFields(stream Stream, typeOrder int) []jsonKV {
	fields := []jsonKV{{Key: "@type", Val: string(stream.Kind)}}
	if typeOrder > 0 {
		fields = append(fields, jsonKV{Key: "@typeorder", Val: strconv.Itoa(typeOrder)})
	}
	for _, field := range stream.Fields {
		fields = append(fields, jsonKV{Key: field.Name, Val: field.Value})
	}
	return fields
}

func joinJSON(items []string, sep string) string {
	var buf bytes.Buffer
	for i, item := range items {
		if i > 0 {
			buf.WriteString(sep)
		}
		buf.WriteString(item)
	}
	return buf.String()
}

func renderJSONObject(fields []jsonKV, multiline bool) string {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, field := range fields {
		if i > 0 {
			if multiline {
				buf.WriteString(",\n")
			} else {
				buf.WriteString(",")
			}
		}
		writeJSONField(&buf, field.Key, field.Val, field.Raw)
	}
	buf.WriteString("}")
	return buf.String()
}

func writeJSONField(buf *bytes.Buffer, key, value string, raw bool) {
	buf.WriteString(renderJSONString(key))
	buf.WriteString(": ")
	if raw {
		buf.WriteString(value)
		return
	}
	buf.WriteString(renderJSONString(value))
}

func renderJSONString(value string) string {
	data, _ := json.Marshal(value)
	return string(data)
}
