// Package trie implements a small prefix trie used by the Board registry
// (component D) to list and prefix-search chip names, and by the HDL
// metadata lookup (component G) to resolve pin and bus names. It also
// offers an edit-distance search (Fuzzy), which neither of those calls.
package trie

// Trie is a prefix tree over lower-cased keys. The zero value is ready
// to use.
type Trie struct {
	root node
}

type node struct {
	children map[byte]*node
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[byte]*node)}
}

// Insert adds key to the trie. Empty keys are ignored.
func (t *Trie) Insert(key string) {
	if key == "" {
		return
	}
	if t.root.children == nil {
		t.root.children = make(map[byte]*node)
	}
	n := &t.root
	for i := 0; i < len(key); i++ {
		c := key[i]
		child, ok := n.children[c]
		if !ok {
			child = newNode()
			n.children[c] = child
		}
		n = child
	}
	n.terminal = true
}

// Contains reports whether key was inserted exactly.
func (t *Trie) Contains(key string) bool {
	n := t.find(key)
	return n != nil && n.terminal
}

// HasPrefix reports whether any inserted key starts with prefix.
func (t *Trie) HasPrefix(prefix string) bool {
	return t.find(prefix) != nil
}

func (t *Trie) find(s string) *node {
	n := &t.root
	for i := 0; i < len(s); i++ {
		if n.children == nil {
			return nil
		}
		child, ok := n.children[s[i]]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// Search returns every inserted key that starts with prefix, in
// lexicographic order.
func (t *Trie) Search(prefix string) []string {
	start := t.find(prefix)
	if start == nil {
		return nil
	}
	var out []string
	start.collect(prefix, &out)
	return out
}

func (n *node) collect(prefix string, out *[]string) {
	if n.terminal {
		*out = append(*out, prefix)
	}
	keys := make([]byte, 0, len(n.children))
	for c := range n.children {
		keys = append(keys, c)
	}
	// simple insertion sort: children sets are small (<= 62 in practice)
	for i := 1; i < len(keys); i++ {
		k := keys[i]
		j := i - 1
		for j >= 0 && keys[j] > k {
			keys[j+1] = keys[j]
			j--
		}
		keys[j+1] = k
	}
	for _, c := range keys {
		n.children[c].collect(prefix+string(c), out)
	}
}

// Fuzzy returns every inserted key within the given Levenshtein edit
// distance of query, ordered by distance then lexicographically.
func (t *Trie) Fuzzy(query string, maxDist int) []string {
	var all []string
	t.root.collect("", &all)
	type scored struct {
		key  string
		dist int
	}
	var hits []scored
	for _, k := range all {
		d := editDistance(query, k)
		if d <= maxDist {
			hits = append(hits, scored{k, d})
		}
	}
	for i := 1; i < len(hits); i++ {
		h := hits[i]
		j := i - 1
		for j >= 0 && (hits[j].dist > h.dist || (hits[j].dist == h.dist && hits[j].key > h.key)) {
			hits[j+1] = hits[j]
			j--
		}
		hits[j+1] = h
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.key
	}
	return out
}

func editDistance(a, b string) int {
	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		cur[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			cur[j] = m
		}
		prev, cur = cur, prev
	}
	return prev[lb]
}
