// Package trie cài đặt cây tiền tố theo rune, lưu node trong một arena
// (slice) và tham chiếu nhau bằng chỉ số thay vì con trỏ.
package trie

import "unicode/utf8"

const root int32 = 0

type node struct {
	children map[rune]int32
	// values giữ các id đã kết thúc tại node này, tăng dần, không trùng.
	values []int32
}

// Trie là cây tiền tố chỉ đọc sau khi build xong.
type Trie struct {
	nodes []node
	keys  int
}

// New tạo trie rỗng chỉ có node gốc.
func New() *Trie {
	return &Trie{nodes: make([]node, 1, 64)}
}

// Insert gắn value vào node kết thúc của key. Key rỗng bị bỏ qua.
func (t *Trie) Insert(key string, value int32) {
	if key == "" {
		return
	}

	cur := root
	for _, ch := range key {
		next, ok := t.nodes[cur].children[ch]
		if !ok {
			next = int32(len(t.nodes))
			t.nodes = append(t.nodes, node{})
			if t.nodes[cur].children == nil {
				t.nodes[cur].children = make(map[rune]int32, 1)
			}
			t.nodes[cur].children[ch] = next
		}
		cur = next
	}

	n := &t.nodes[cur]
	if len(n.values) == 0 {
		t.keys++
	}
	n.values = insertSorted(n.values, value)
}

func insertSorted(values []int32, v int32) []int32 {
	i := len(values)
	for i > 0 && values[i-1] >= v {
		if values[i-1] == v {
			return values
		}
		i--
	}
	values = append(values, 0)
	copy(values[i+1:], values[i:])
	values[i] = v
	return values
}

// Get trả về các value của đúng key (không phải tiền tố). Slice trả về
// thuộc trie, caller không được sửa.
func (t *Trie) Get(key string) []int32 {
	if key == "" {
		return nil
	}
	cur := root
	for _, ch := range key {
		next, ok := t.nodes[cur].children[ch]
		if !ok {
			return nil
		}
		cur = next
	}
	return t.nodes[cur].values
}

// Walk duyệt text từ byte offset start theo từng rune và gọi visit tại mỗi
// node có value, với end là byte offset ngay sau rune cuối đã khớp. Dừng khi
// hết nhánh khớp hoặc visit trả về false.
func (t *Trie) Walk(text string, start int, visit func(end int, values []int32) bool) {
	if start < 0 || start >= len(text) {
		return
	}
	cur := root
	pos := start
	for pos < len(text) {
		ch, size := utf8.DecodeRuneInString(text[pos:])
		next, ok := t.nodes[cur].children[ch]
		if !ok {
			return
		}
		cur = next
		pos += size
		if vals := t.nodes[cur].values; len(vals) > 0 {
			if !visit(pos, vals) {
				return
			}
		}
	}
}

// LongestPrefix tìm tiền tố dài nhất của text[start:] có ít nhất một value
// được accept chấp nhận. Trả về end = start và nil khi không có.
func (t *Trie) LongestPrefix(text string, start int, accept func(int32) bool) (int, []int32) {
	end := start
	var best []int32
	t.Walk(text, start, func(pos int, values []int32) bool {
		var kept []int32
		for _, v := range values {
			if accept == nil || accept(v) {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			end, best = pos, kept
		}
		return true
	})
	return end, best
}

// Len trả về số key phân biệt đã insert.
func (t *Trie) Len() int { return t.keys }

// NodeCount trả về số node trong arena, kể cả gốc.
func (t *Trie) NodeCount() int { return len(t.nodes) }
