package classify

// Category is a GEMM dimension category. The declaration order is the
// priority in which primitive buckets are filled.
type Category int

// Dimension categories.
const (
	CategoryC Category = iota
	CategoryM
	CategoryK
	CategoryN
)

// String returns the single-letter name of the category.
func (c Category) String() string {
	switch c {
	case CategoryC:
		return "C"
	case CategoryM:
		return "M"
	case CategoryK:
		return "K"
	case CategoryN:
		return "N"
	default:
		return "?"
	}
}

// Bucket is one of the eight classification buckets.
type Bucket int

// Buckets. Primitive buckets come first.
const (
	BucketCB Bucket = iota
	BucketMB
	BucketNB
	BucketKB
	BucketBC
	BucketBM
	BucketBN
	BucketBK
)

var bucketNames = [...]string{"cb", "mb", "nb", "kb", "bc", "bm", "bn", "bk"}

// String returns the short bucket name, e.g. "kb" or "bm".
func (b Bucket) String() string {
	if b < BucketCB || b > BucketBK {
		return "unknown"
	}
	return bucketNames[b]
}

// IsPrimitive reports whether the bucket belongs to the inner kernel.
func (b Bucket) IsPrimitive() bool { return b <= BucketKB }

// Category returns the dimension category of the bucket.
func (b Bucket) Category() Category {
	switch b {
	case BucketCB, BucketBC:
		return CategoryC
	case BucketMB, BucketBM:
		return CategoryM
	case BucketNB, BucketBN:
		return CategoryN
	default:
		return CategoryK
	}
}

func primitiveBucket(c Category) Bucket {
	switch c {
	case CategoryC:
		return BucketCB
	case CategoryM:
		return BucketMB
	case CategoryN:
		return BucketNB
	default:
		return BucketKB
	}
}

func loopBucket(c Category) Bucket {
	return primitiveBucket(c) + BucketBC
}

// Dims groups labels by category.
type Dims struct {
	C []string `json:"c" yaml:"c"`
	M []string `json:"m" yaml:"m"`
	N []string `json:"n" yaml:"n"`
	K []string `json:"k" yaml:"k"`
}

// Get returns the labels of category c.
func (d *Dims) Get(c Category) []string {
	switch c {
	case CategoryC:
		return d.C
	case CategoryM:
		return d.M
	case CategoryN:
		return d.N
	default:
		return d.K
	}
}

func (d *Dims) slot(c Category) *[]string {
	switch c {
	case CategoryC:
		return &d.C
	case CategoryM:
		return &d.M
	case CategoryN:
		return &d.N
	default:
		return &d.K
	}
}

// Len returns the number of labels over all categories.
func (d *Dims) Len() int { return len(d.C) + len(d.M) + len(d.N) + len(d.K) }

// Classification is the result of classifying one binary contraction.
type Classification struct {
	Primitive Dims `json:"primitive" yaml:"primitive"` // cb, mb, nb, kb
	Loop      Dims `json:"loop" yaml:"loop"`           // bc, bm, bn, bk
}

// Labels returns the labels stored in bucket b.
func (c *Classification) Labels(b Bucket) []string {
	if b.IsPrimitive() {
		return c.Primitive.Get(b.Category())
	}
	return c.Loop.Get(b.Category())
}

// Bucket returns the bucket holding label.
func (c *Classification) Bucket(label string) (Bucket, bool) {
	for b := BucketCB; b <= BucketBK; b++ {
		for _, l := range c.Labels(b) {
			if l == label {
				return b, true
			}
		}
	}
	return 0, false
}

// Category returns the category of label regardless of primitive or loop.
func (c *Classification) Category(label string) (Category, bool) {
	b, ok := c.Bucket(label)
	if !ok {
		return 0, false
	}
	return b.Category(), true
}

// Merged returns primitive and loop labels combined per category, primitive
// labels last (innermost).
func (c *Classification) Merged() Dims {
	var d Dims
	for cat := CategoryC; cat <= CategoryN; cat++ {
		s := d.slot(cat)
		*s = append(*s, c.Loop.Get(cat)...)
		*s = append(*s, c.Primitive.Get(cat)...)
	}
	return d
}

// Len returns the total number of classified labels.
func (c *Classification) Len() int { return c.Primitive.Len() + c.Loop.Len() }
