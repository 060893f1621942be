package domain

// BlockIndex resolves the block references of a run by side and ID.
// The first block with a given ID wins.
type BlockIndex struct {
	source map[string]*Block
	target map[string]*Block
}

// NewBlockIndex indexes the source and target blocks.
func NewBlockIndex(src, tgt []Block) *BlockIndex {
	return &BlockIndex{source: indexBlocks(src), target: indexBlocks(tgt)}
}

func indexBlocks(blocks []Block) map[string]*Block {
	m := make(map[string]*Block, len(blocks))
	for i := range blocks {
		if _, ok := m[blocks[i].ID]; !ok {
			m[blocks[i].ID] = &blocks[i]
		}
	}
	return m
}

// Source returns the source block with the given ID.
func (x *BlockIndex) Source(id string) (*Block, bool) {
	b, ok := x.source[id]
	return b, ok
}

// Target returns the target block with the given ID.
func (x *BlockIndex) Target(id string) (*Block, bool) {
	b, ok := x.target[id]
	return b, ok
}

// Pair returns the blocks a correspondence refers to; absent sides are nil.
func (x *BlockIndex) Pair(c *Correspondence) (src, tgt *Block) {
	if c.SourceRef != nil {
		src = x.source[*c.SourceRef]
	}
	if c.TargetRef != nil {
		tgt = x.target[*c.TargetRef]
	}
	return src, tgt
}
