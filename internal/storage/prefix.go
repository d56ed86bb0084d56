package storage

// clearChunk bounds how many deletes DeleteAll commits per batch. Badger
// rejects transactions past its size limit.
const clearChunk = 1000

// PrefixDB is a namespace inside a shared store. Every key it reads or
// writes carries its prefix, and keys handed back to callers have it
// stripped.
type PrefixDB struct {
	inner  BatchDB
	prefix []byte
}

// NewPrefixDB returns the namespace prefix inside inner. The prefix is
// copied.
func NewPrefixDB(inner BatchDB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: append([]byte(nil), prefix...)}
}

// Prefix returns the namespace prefix.
func (p *PrefixDB) Prefix() []byte {
	return append([]byte(nil), p.prefix...)
}

// key returns a fresh slice holding prefix||k.
func (p *PrefixDB) key(k []byte) []byte {
	return append(p.prefix[:len(p.prefix):len(p.prefix)], k...)
}

func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(p.key(key))
}

func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(p.key(key), value)
}

func (p *PrefixDB) Delete(key []byte) error {
	return p.inner.Delete(p.key(key))
}

func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(p.key(key))
}

// ForEach walks the keys under prefix inside the namespace, in key order.
// fn sees keys without the namespace prefix.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	n := len(p.prefix)
	return p.inner.ForEach(p.key(prefix), func(key, value []byte) error {
		return fn(key[n:], value)
	})
}

// DeleteAll removes the whole namespace. Deletes are committed in batches
// of clearChunk keys, so a failure part way leaves a prefix of the work
// done and the call can simply be repeated.
func (p *PrefixDB) DeleteAll() error {
	var keys [][]byte
	err := p.inner.ForEach(p.prefix, func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	for len(keys) > 0 {
		n := min(len(keys), clearChunk)
		b := p.inner.NewBatch()
		for _, k := range keys[:n] {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		if err := b.Commit(); err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}

// Close does nothing. The shared store is closed by its owner.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch of the inner store that writes inside the
// namespace.
func (p *PrefixDB) NewBatch() Batch {
	return prefixBatch{p: p, inner: p.inner.NewBatch()}
}

type prefixBatch struct {
	p     *PrefixDB
	inner Batch
}

func (b prefixBatch) Put(key, value []byte) error { return b.inner.Put(b.p.key(key), value) }
func (b prefixBatch) Delete(key []byte) error     { return b.inner.Delete(b.p.key(key)) }
func (b prefixBatch) Commit() error               { return b.inner.Commit() }
