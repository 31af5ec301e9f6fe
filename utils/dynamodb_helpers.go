package utils

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PairKey builds the canonical key for an unordered member pair. Both orders
// of the same two ids produce the same key, which is what makes the
// one-conversation-per-pair upsert race-free.
func PairKey(a, b string) string {
	if a < b {
		return a + "#" + b
	}
	return b + "#" + a
}

// ExtractString safely extracts a string from a DynamoDB attribute map
func ExtractString(item map[string]types.AttributeValue, field string) string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

// ExtractBool safely extracts a boolean from a DynamoDB attribute map
func ExtractBool(item map[string]types.AttributeValue, field string) bool {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberBOOL); ok {
			return v.Value
		}
	}
	return false
}

// ExtractStringSet safely extracts a string set from a DynamoDB attribute map
func ExtractStringSet(item map[string]types.AttributeValue, field string) []string {
	if attr, ok := item[field]; ok {
		if v, ok := attr.(*types.AttributeValueMemberSS); ok {
			return v.Value
		}
	}
	return nil
}
