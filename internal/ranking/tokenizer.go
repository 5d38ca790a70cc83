package ranking

import "strings"

// PairTokenize produces BERT-style inputs for a (query, document) pair:
// [CLS] query [SEP] document [SEP], with token_type_ids marking the document
// segment. Token IDs are hash-based; a production deployment supplies a model
// whose exported graph embeds its own vocabulary lookup.
func PairTokenize(query, document string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = 256
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = 101 // [CLS]
	attentionMask[0] = 1

	pos := 1
	for _, word := range strings.Fields(query) {
		if pos >= maxTokens-2 {
			break
		}
		inputIDs[pos] = int64(hashToken(word))
		attentionMask[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = 102 // [SEP]
		attentionMask[pos] = 1
		pos++
	}
	for _, word := range strings.Fields(document) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = int64(hashToken(word))
		attentionMask[pos] = 1
		tokenTypeIDs[pos] = 1
		pos++
	}
	if pos < maxTokens {
		inputIDs[pos] = 102 // [SEP]
		attentionMask[pos] = 1
		tokenTypeIDs[pos] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

func hashToken(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h % 30000
}
