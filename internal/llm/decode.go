package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// DecodeResult carries the outcome of decoding a model reply into a target.
type DecodeResult struct {
	RepairStats  RepairStats `json:"repair_stats"`
	OriginalText string      `json:"-"`
	RepairedJSON string      `json:"-"`
	Success      bool        `json:"success"`
}

// DecodeInto extracts the JSON payload from a raw model reply, repairs it if
// needed, and unmarshals it into target. Model replies routinely wrap JSON in
// prose or markdown fences, so extraction happens before repair.
func DecodeInto(raw string, target interface{}) (DecodeResult, error) {
	result := DecodeResult{OriginalText: raw}

	jsonStr := ExtractJSON(raw)
	if jsonStr == "" {
		log.Debug().Str("reply", truncateForLog(raw, 200)).Msg("No JSON found in model reply")
		return result, fmt.Errorf("no JSON found in response")
	}

	repairedJSON, repairStats, err := RepairJSON(jsonStr)
	result.RepairStats = repairStats
	result.RepairedJSON = repairedJSON

	if repairStats.WasRepaired {
		log.Debug().
			Strs("strategies", repairStats.RepairStrategies).
			Int("errors_fixed", repairStats.ErrorsFixed).
			Dur("took", repairStats.RepairTime).
			Msg("JSON repair applied to model reply")
	}

	if err != nil {
		log.Debug().Err(err).Str("repaired", truncateForLog(repairedJSON, 500)).Msg("JSON repair failed")
		return result, err
	}

	if err := json.Unmarshal([]byte(repairedJSON), target); err != nil {
		log.Debug().Err(err).Str("payload", truncateForLog(repairedJSON, 500)).Msg("JSON parsing failed after repair")
		return result, err
	}

	result.Success = true
	return result, nil
}

// ExtractJSON extracts JSON content from mixed text/JSON responses.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw
	}

	// Prefer fenced code blocks when present.
	if strings.Contains(raw, "```") {
		lines := strings.Split(raw, "\n")
		var jsonLines []string
		inCodeBlock := false

		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inCodeBlock = !inCodeBlock
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}

		if len(jsonLines) > 0 {
			return strings.TrimSpace(strings.Join(jsonLines, "\n"))
		}
	}

	startIdx := strings.Index(raw, "{")
	if startIdx == -1 {
		startIdx = strings.Index(raw, "[")
		if startIdx == -1 {
			return ""
		}
	}

	openChar := raw[startIdx]
	closeChar := byte('}')
	if openChar == '[' {
		closeChar = ']'
	}

	count := 0
	for i := startIdx; i < len(raw); i++ {
		if raw[i] == openChar {
			count++
		} else if raw[i] == closeChar {
			count--
			if count == 0 {
				return raw[startIdx : i+1]
			}
		}
	}

	// Incomplete structure; let the repair pass close it.
	return raw[startIdx:]
}

func truncateForLog(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}
