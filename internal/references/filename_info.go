package references

import (
	"path/filepath"
	"strings"

	"github.com/autobrr/go-mediainfo-refs/internal/mediainfo"
)

type channelInfo struct {
	positions  string
	positions2 string
	layout     string
}

var channelTokens = map[string]channelInfo{
	"l":    {"Front: L", "1/0/0", "L"},
	"lt":   {"Front: Lt", "1/0/0", "Lt"},
	"rt":   {"Front: Rt", "1/0/0", "Rt"},
	"r":    {"Front: R", "1/0/0", "R"},
	"c":    {"Front: C", "1/0/0", "C"},
	"mono": {"Front: C", "1/0/0", "C"},
	"lf":   {"LFE", ".1", "LFE"},
	"lfe":  {"LFE", ".1", "LFE"},
	"sub":  {"LFE", ".1", "LFE"},
	"ls":   {"Side: L", "0/1/0", "Ls"},
	"rs":   {"Side: R", "0/1/0", "Rs"},
	"b":    {"Back: C", "0/0/1", "Cs"},
}

var languageTokens = map[string]string{
	"ara": "ar",
	"deu": "de",
	"eng": "en",
	"fra": "fr",
	"fre": "fr",
	"ita": "it",
	"jpn": "ja",
	"rus": "ru",
	"spa": "es",
}

// infoFromFileNames reads channel and language columns out of the names of
// sibling audio files, such as movie_eng_l.wav / movie_eng_r.wav.
func infoFromFileNames(sequences []*Sequence) {
	var (
		lists [][]string
		owner []*Sequence
	)
	for _, seq := range sequences {
		if seq.StreamKind != mediainfo.StreamAudio || len(seq.FileNames) == 0 {
			continue
		}
		lists = append(lists, fileNameTokens(seq.FileNames[0]))
		owner = append(owner, seq)
	}
	if len(lists) < 2 {
		return
	}

	channelCol, languageCol := -1, -1
	for col := 0; col < len(lists[0]); col++ {
		isChannel, isLanguage := true, true
		for _, tokens := range lists {
			if col >= len(tokens) {
				break
			}
			token := tokens[len(tokens)-1-col]
			if _, ok := channelTokens[token]; channelCol == -1 && !ok {
				isChannel = false
			}
			if _, ok := languageTokens[token]; languageCol == -1 && !ok {
				isLanguage = false
			}
		}
		if isChannel && channelCol == -1 {
			channelCol = col
		}
		if isLanguage && languageCol == -1 {
			languageCol = col
		}
		if channelCol != -1 && languageCol != -1 {
			break
		}
	}

	for i, tokens := range lists {
		seq := owner[i]
		if channelCol != -1 && channelCol < len(tokens) {
			if info, ok := channelTokens[tokens[len(tokens)-1-channelCol]]; ok {
				seq.Infos["ChannelPositions"] = info.positions
				seq.Infos["ChannelPositions/String2"] = info.positions2
				seq.Infos["ChannelLayout"] = info.layout
			}
		}
		if languageCol != -1 && 1+languageCol < len(tokens) {
			if language, ok := languageTokens[tokens[len(tokens)-1-languageCol]]; ok {
				seq.Infos["Language"] = language
			}
		}
	}
}

// fileNameTokens lowercases the base name without its extension and splits
// it on spaces, underscores and dots. "51 " markers are dropped.
func fileNameTokens(name string) []string {
	name = name[strings.LastIndexAny(name, `\/`)+1:]
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "51 ", "")
	name = strings.NewReplacer("_", " ", ".", " ").Replace(name)
	return strings.Fields(strings.ToLower(name))
}
