package cache

// ScopedKeyer prefixes every key of another Keyer. The CLI scopes keys by
// format version ("v1") so a change to the stored JSON shape never reads
// stale entries; a shared redis can add a project name on top.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer scopes inner under prefix. A nil inner means the
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) BuildKey(inputHash string, opts BuildKeyOpts) string {
	return k.scope(k.inner.BuildKey(inputHash, opts))
}

func (k ScopedKeyer) ReportKey(graphHash string, opts ReportKeyOpts) string {
	return k.scope(k.inner.ReportKey(graphHash, opts))
}

func (k ScopedKeyer) RenderKey(graphHash string, opts RenderKeyOpts) string {
	return k.scope(k.inner.RenderKey(graphHash, opts))
}

func (k ScopedKeyer) scope(key string) string {
	if k.prefix == "" {
		return key
	}
	return k.prefix + ":" + key
}
