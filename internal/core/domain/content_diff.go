package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CanonicalLines flattens content into sorted "key: value" lines. Nested
// objects use dotted keys and arrays use [i] suffixes. Nil content has no lines.
func CanonicalLines(content any) ([]string, error) {
	if content == nil {
		return nil, nil
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}

	flat := map[string]string{}
	flattenValue("", tree, flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, flat[k]))
	}
	return lines, nil
}

// DiffContent renders a unified diff between two contents. Either side may be
// nil, which reads as an absent (removed or not yet added) entity.
func DiffContent(baseLabel string, base any, targetLabel string, target any) (string, error) {
	baseLines, err := CanonicalLines(base)
	if err != nil {
		return "", err
	}
	targetLines, err := CanonicalLines(target)
	if err != nil {
		return "", err
	}

	ops := diffLines(baseLines, targetLines)

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", baseLabel)
	fmt.Fprintf(&b, "+++ %s\n", targetLabel)
	fmt.Fprintf(&b, "@@ -1,%d +1,%d @@\n", len(baseLines), len(targetLines))
	for _, op := range ops {
		b.WriteByte(op.prefix)
		b.WriteString(op.line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func flattenValue(prefix string, value any, acc map[string]string) {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix != "" {
				acc[prefix] = "{}"
			}
			return
		}
		for k, v := range typed {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenValue(next, v, acc)
		}
	case []any:
		if len(typed) == 0 {
			if prefix != "" {
				acc[prefix] = "[]"
			}
			return
		}
		for i, v := range typed {
			flattenValue(fmt.Sprintf("%s[%d]", prefix, i), v, acc)
		}
	case nil:
		if prefix != "" {
			acc[prefix] = "null"
		}
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			acc[prefix] = fmt.Sprintf("%v", typed)
			return
		}
		acc[prefix] = string(encoded)
	}
}

type diffOp struct {
	prefix byte
	line   string
}

// diffLines computes a line diff from the longest common subsequence.
func diffLines(base, target []string) []diffOp {
	m, n := len(base), len(target)
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case base[i] == target[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	ops := make([]diffOp, 0, m+n)
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case base[i] == target[j]:
			ops = append(ops, diffOp{' ', base[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			ops = append(ops, diffOp{'-', base[i]})
			i++
		default:
			ops = append(ops, diffOp{'+', target[j]})
			j++
		}
	}
	for ; i < m; i++ {
		ops = append(ops, diffOp{'-', base[i]})
	}
	for ; j < n; j++ {
		ops = append(ops, diffOp{'+', target[j]})
	}
	return ops
}
