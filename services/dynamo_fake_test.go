package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"saathi_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDB is an in-memory DB implementation for service tests. It honors the
// key schemas of the real tables and evaluates the condition and update
// expressions the services actually issue, including all-or-nothing
// transactions, so the concurrency-sensitive paths can be tested without a
// live DynamoDB.
type fakeDB struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

var fakeKeySchemas = map[string][]string{
	models.InterestsTable:     {"PK", "SK"},
	models.NotificationsTable: {"PK", "SK"},
	models.ConversationsTable: {"pairKey"},
	models.MessagesTable:      {"pairKey", "messageSort"},
	models.ShortlistsTable:    {"PK"},
	models.UserProfilesTable:  {"userId"},
}

func newFakeDB() *fakeDB {
	return &fakeDB{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (f *fakeDB) table(name string) map[string]map[string]types.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return f.tables[name]
}

func fakeItemKey(tableName string, attrs map[string]types.AttributeValue) string {
	parts := make([]string, 0, 2)
	for _, keyAttr := range fakeKeySchemas[tableName] {
		parts = append(parts, attrString(attrs, keyAttr))
	}
	return strings.Join(parts, "|")
}

func attrString(attrs map[string]types.AttributeValue, name string) string {
	if attr, ok := attrs[name]; ok {
		if s, ok := attr.(*types.AttributeValueMemberS); ok {
			return s.Value
		}
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDB) GetItem(_ context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyItem(f.table(tableName)[fakeItemKey(tableName, key)]), nil
}

func (f *fakeDB) PutItem(_ context.Context, tableName string, item interface{}) error {
	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table(tableName)[fakeItemKey(tableName, marshaled)] = marshaled
	return nil
}

func (f *fakeDB) UpdateItem(ctx context.Context, tableName, updateExpression string, key, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	return f.UpdateItemWithCondition(ctx, tableName, updateExpression, "", key, values, names)
}

func (f *fakeDB) UpdateItemWithCondition(_ context.Context, tableName, updateExpression, conditionExpression string, key, values map[string]types.AttributeValue, names map[string]string) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	itemKey := fakeItemKey(tableName, key)
	existing := f.table(tableName)[itemKey]
	if !evalCondition(existing, conditionExpression, names, values) {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
	}

	updated := applyUpdate(existing, key, updateExpression, names, values)
	f.table(tableName)[itemKey] = updated
	return copyItem(updated), nil
}

func (f *fakeDB) QueryAllItemsWithIndex(_ context.Context, tableName, indexName, keyCondition string, values map[string]types.AttributeValue, names map[string]string) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.match(tableName, keyCondition, values, false), nil
}

func (f *fakeDB) QueryItemsWithOptions(_ context.Context, tableName, keyCondition string, values map[string]types.AttributeValue, names map[string]string, limit int32, latestFirst bool) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return limitItems(f.match(tableName, keyCondition, values, latestFirst), limit), nil
}

func (f *fakeDB) QueryItemsPaged(_ context.Context, tableName, keyCondition string, values map[string]types.AttributeValue, names map[string]string, limit int32, startKey map[string]types.AttributeValue) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := f.match(tableName, keyCondition, values, false)

	rangeAttr := ""
	if schema := fakeKeySchemas[tableName]; len(schema) > 1 {
		rangeAttr = schema[1]
	}
	if len(startKey) > 0 && rangeAttr != "" {
		after := attrString(startKey, rangeAttr)
		filtered := items[:0]
		for _, item := range items {
			if attrString(item, rangeAttr) > after {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	if limit > 0 && int32(len(items)) > limit {
		page := items[:limit]
		last := page[len(page)-1]
		lastKey := map[string]types.AttributeValue{}
		for _, keyAttr := range fakeKeySchemas[tableName] {
			lastKey[keyAttr] = last[keyAttr]
		}
		return page, lastKey, nil
	}
	return items, nil, nil
}

func (f *fakeDB) TransactWriteItems(_ context.Context, items []types.TransactWriteItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Phase one: evaluate every condition against current state.
	reasons := make([]types.CancellationReason, len(items))
	failed := false
	for i, item := range items {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		switch {
		case item.Put != nil:
			existing := f.table(*item.Put.TableName)[fakeItemKey(*item.Put.TableName, item.Put.Item)]
			if !evalCondition(existing, aws.ToString(item.Put.ConditionExpression), item.Put.ExpressionAttributeNames, item.Put.ExpressionAttributeValues) {
				reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
				failed = true
			}
		case item.Update != nil:
			existing := f.table(*item.Update.TableName)[fakeItemKey(*item.Update.TableName, item.Update.Key)]
			if !evalCondition(existing, aws.ToString(item.Update.ConditionExpression), item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues) {
				reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
				failed = true
			}
		case item.Delete != nil:
			// Unconditional deletes in these services.
		}
	}
	if failed {
		return &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	// Phase two: apply everything.
	for _, item := range items {
		switch {
		case item.Put != nil:
			table := *item.Put.TableName
			f.table(table)[fakeItemKey(table, item.Put.Item)] = copyItem(item.Put.Item)
		case item.Update != nil:
			table := *item.Update.TableName
			itemKey := fakeItemKey(table, item.Update.Key)
			f.table(table)[itemKey] = applyUpdate(f.table(table)[itemKey], item.Update.Key,
				aws.ToString(item.Update.UpdateExpression), item.Update.ExpressionAttributeNames, item.Update.ExpressionAttributeValues)
		case item.Delete != nil:
			table := *item.Delete.TableName
			delete(f.table(table), fakeItemKey(table, item.Delete.Key))
		}
	}
	return nil
}

func (f *fakeDB) ScanWithFilter(_ context.Context, tableName string, filterFunc func(map[string]types.AttributeValue) bool, result interface{}) error {
	f.mu.Lock()
	items := []map[string]types.AttributeValue{}
	keys := make([]string, 0, len(f.table(tableName)))
	for k := range f.table(tableName) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		item := f.table(tableName)[k]
		if filterFunc == nil || filterFunc(item) {
			items = append(items, copyItem(item))
		}
	}
	f.mu.Unlock()
	return attributevalue.UnmarshalListOfMaps(items, result)
}

// match returns the items whose queried attribute equals the placeholder
// value, sorted by range key (or by the queried GSI's natural order).
func (f *fakeDB) match(tableName, keyCondition string, values map[string]types.AttributeValue, latestFirst bool) []map[string]types.AttributeValue {
	attr, placeholder := parseEquality(keyCondition)
	want := attrString(values, placeholder)

	var items []map[string]types.AttributeValue
	for _, item := range f.table(tableName) {
		if attrString(item, attr) == want {
			items = append(items, copyItem(item))
		}
	}

	sortAttr := attr
	if schema := fakeKeySchemas[tableName]; len(schema) > 1 {
		sortAttr = schema[1]
	}
	sort.SliceStable(items, func(i, j int) bool {
		if latestFirst {
			return attrString(items[i], sortAttr) > attrString(items[j], sortAttr)
		}
		return attrString(items[i], sortAttr) < attrString(items[j], sortAttr)
	})
	return items
}

func limitItems(items []map[string]types.AttributeValue, limit int32) []map[string]types.AttributeValue {
	if limit > 0 && int32(len(items)) > limit {
		return items[:limit]
	}
	return items
}

func parseEquality(expr string) (attr, placeholder string) {
	parts := strings.SplitN(expr, "=", 2)
	if len(parts) != 2 {
		panic(fmt.Sprintf("fakeDB: unsupported key condition %q", expr))
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if resolved, ok := names[name]; ok {
			return resolved
		}
	}
	return name
}

// evalCondition evaluates the condition expressions the services use:
// equality, <=, attribute_not_exists, contains, and OR-joined combinations.
func evalCondition(item map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) bool {
	if expr == "" {
		return true
	}
	for _, clause := range strings.Split(expr, " OR ") {
		if evalClause(item, strings.TrimSpace(clause), names, values) {
			return true
		}
	}
	return false
}

func evalClause(item map[string]types.AttributeValue, clause string, names map[string]string, values map[string]types.AttributeValue) bool {
	switch {
	case strings.HasPrefix(clause, "attribute_not_exists(") && strings.HasSuffix(clause, ")"):
		attr := resolveName(clause[len("attribute_not_exists(") : len(clause)-1], names)
		if item == nil {
			return true
		}
		_, exists := item[attr]
		return !exists

	case strings.HasPrefix(clause, "contains(") && strings.HasSuffix(clause, ")"):
		args := strings.SplitN(clause[len("contains("):len(clause)-1], ",", 2)
		attr := resolveName(strings.TrimSpace(args[0]), names)
		want := attrString(values, strings.TrimSpace(args[1]))
		if item == nil {
			return false
		}
		if set, ok := item[attr].(*types.AttributeValueMemberSS); ok {
			for _, member := range set.Value {
				if member == want {
					return true
				}
			}
		}
		return false

	case strings.Contains(clause, "<="):
		parts := strings.SplitN(clause, "<=", 2)
		attr := resolveName(strings.TrimSpace(parts[0]), names)
		want := attrString(values, strings.TrimSpace(parts[1]))
		return item != nil && attrString(item, attr) <= want

	case strings.Contains(clause, "="):
		parts := strings.SplitN(clause, "=", 2)
		attr := resolveName(strings.TrimSpace(parts[0]), names)
		want := attrString(values, strings.TrimSpace(parts[1]))
		return item != nil && attrString(item, attr) == want
	}
	panic(fmt.Sprintf("fakeDB: unsupported condition clause %q", clause))
}

// applyUpdate applies the SET / ADD / DELETE update expressions the services
// use, creating the item from its key when it does not exist yet.
func applyUpdate(existing, key map[string]types.AttributeValue, expr string, names map[string]string, values map[string]types.AttributeValue) map[string]types.AttributeValue {
	item := copyItem(existing)
	if item == nil {
		item = map[string]types.AttributeValue{}
		for k, v := range key {
			item[k] = v
		}
	}

	for verb, body := range splitUpdateSections(expr) {
		switch verb {
		case "SET":
			for _, assignment := range splitAssignments(body) {
				parts := strings.SplitN(assignment, "=", 2)
				attr := resolveName(strings.TrimSpace(parts[0]), names)
				rhs := strings.TrimSpace(parts[1])
				if strings.HasPrefix(rhs, "if_not_exists(") {
					args := strings.SplitN(rhs[len("if_not_exists("):len(rhs)-1], ",", 2)
					if _, exists := item[resolveName(strings.TrimSpace(args[0]), names)]; exists {
						continue
					}
					rhs = strings.TrimSpace(args[1])
				}
				item[attr] = values[rhs]
			}
		case "ADD":
			attr, placeholder := splitSetOperand(body)
			attr = resolveName(attr, names)
			addition := values[placeholder].(*types.AttributeValueMemberSS)
			merged := map[string]bool{}
			if set, ok := item[attr].(*types.AttributeValueMemberSS); ok {
				for _, member := range set.Value {
					merged[member] = true
				}
			}
			for _, member := range addition.Value {
				merged[member] = true
			}
			item[attr] = &types.AttributeValueMemberSS{Value: sortedKeys(merged)}
		case "DELETE":
			attr, placeholder := splitSetOperand(body)
			attr = resolveName(attr, names)
			removal := values[placeholder].(*types.AttributeValueMemberSS)
			remaining := map[string]bool{}
			if set, ok := item[attr].(*types.AttributeValueMemberSS); ok {
				for _, member := range set.Value {
					remaining[member] = true
				}
			}
			for _, member := range removal.Value {
				delete(remaining, member)
			}
			if len(remaining) == 0 {
				delete(item, attr)
			} else {
				item[attr] = &types.AttributeValueMemberSS{Value: sortedKeys(remaining)}
			}
		}
	}
	return item
}

// splitAssignments splits a SET clause body on top-level commas, leaving
// commas inside if_not_exists(...) intact.
func splitAssignments(body string) []string {
	var out []string
	depth, start := 0, 0
	for i, c := range body {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, body[start:i])
				start = i + 1
			}
		}
	}
	return append(out, body[start:])
}

func splitUpdateSections(expr string) map[string]string {
	sections := map[string]string{}
	verbs := []string{"SET", "ADD", "DELETE", "REMOVE"}

	type section struct {
		verb  string
		start int
	}
	var found []section
	for _, verb := range verbs {
		idx := indexOfWord(expr, verb)
		if idx >= 0 {
			found = append(found, section{verb, idx})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].start < found[j].start })

	for i, s := range found {
		end := len(expr)
		if i+1 < len(found) {
			end = found[i+1].start
		}
		sections[s.verb] = strings.TrimSpace(expr[s.start+len(s.verb) : end])
	}
	return sections
}

func indexOfWord(expr, word string) int {
	for idx := 0; idx < len(expr); {
		i := strings.Index(expr[idx:], word)
		if i < 0 {
			return -1
		}
		i += idx
		beforeOK := i == 0 || expr[i-1] == ' '
		after := i + len(word)
		afterOK := after >= len(expr) || expr[after] == ' '
		if beforeOK && afterOK {
			return i
		}
		idx = after
	}
	return -1
}

func splitSetOperand(body string) (attr, placeholder string) {
	fields := strings.Fields(body)
	if len(fields) != 2 {
		panic(fmt.Sprintf("fakeDB: unsupported set operand %q", body))
	}
	return fields[0], fields[1]
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
