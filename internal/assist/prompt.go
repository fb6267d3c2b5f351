package assist

import (
	"fmt"
	"strings"
)

// ChangesMarker separates the corrected SRT from the change list.
const ChangesMarker = "---CHANGES---"

// BuildPhoneticPrompt creates the prompt for phonetic generation. lrc is the
// current timeline rendered as LRC.
func BuildPhoneticPrompt(lrc string) string {
	var sb strings.Builder

	sb.WriteString("Convert the following song lyrics into phonetic pronunciation (not IPA), as if singing. ")
	sb.WriteString("Use simple, readable spelling.\n\n")

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Output LRC format only.\n")
	sb.WriteString("2. For every input line, output the original line first, then its phonetic version on the next line with the SAME timestamp.\n")
	sb.WriteString("3. Keep every timestamp exactly as given. Do not add, merge or drop lines.\n")
	sb.WriteString("4. Keep punctuation.\n")
	sb.WriteString("5. Do not add any explanation or markdown formatting.\n\n")

	sb.WriteString("Example:\n")
	sb.WriteString("[00:12.50]Hello darkness\n")
	sb.WriteString("[00:12.50]heh-loh dark-ness\n\n")

	sb.WriteString("LYRICS:\n")
	sb.WriteString(strings.TrimSpace(lrc))
	sb.WriteString("\n")

	return sb.String()
}

// BuildCorrectionPrompt asks for a corrected SRT plus a change list.
func BuildCorrectionPrompt(srt, reference string) string {
	var sb strings.Builder

	sb.WriteString("You are a lyrics correction assistant. ")
	sb.WriteString("Compare the Whisper SRT with the reference lyrics and fix transcription errors.\n\n")
	sb.WriteString("Keep exact timestamps, only fix TEXT.\n\n")
	writeOutputFormat(&sb)

	sb.WriteString("WHISPER SRT:\n")
	sb.WriteString(strings.TrimSpace(srt))
	sb.WriteString("\n\nREFERENCE LYRICS:\n")
	sb.WriteString(strings.TrimSpace(reference))
	sb.WriteString("\n")

	return sb.String()
}

// BuildPolishPrompt asks for spelling, casing and punctuation fixes without
// reference lyrics.
func BuildPolishPrompt(srt, notes string) string {
	var sb strings.Builder

	sb.WriteString("You are a lyrics editor. Polish the following SRT lyrics: ")
	sb.WriteString("fix misheard words that make no sense in context, spelling, capitalization and punctuation.\n\n")
	sb.WriteString("Keep exact timestamps and cue count, only fix TEXT.\n\n")

	if notes = strings.TrimSpace(notes); notes != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", notes))
	}

	writeOutputFormat(&sb)

	sb.WriteString("SRT:\n")
	sb.WriteString(strings.TrimSpace(srt))
	sb.WriteString("\n")

	return sb.String()
}

func writeOutputFormat(sb *strings.Builder) {
	sb.WriteString("Output format:\n")
	sb.WriteString("1. Corrected SRT (complete)\n")
	sb.WriteString(fmt.Sprintf("2. %q\n", ChangesMarker))
	sb.WriteString("3. List changes: Line X: \"wrong\" → \"correct\" (reason)\n\n")
}
