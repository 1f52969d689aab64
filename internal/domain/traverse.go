package domain

// PathValue walks a sequence of keys through a tree of decoded JSON
// (map[string]any values). It returns (nil, false) as soon as any hop fails
// to resolve or a non-object is encountered mid-path.
func PathValue(root any, keys ...string) (any, bool) {
	cur := root
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[k]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// PathString resolves a key path to a string, returning "" when the path does
// not resolve or the leaf is not a string. It replaces per-call-site null
// checks when flattening the nested localidades hierarchy.
func PathString(root any, keys ...string) string {
	v, ok := PathValue(root, keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
