package index

var (
	bMeta   = []byte("meta")      // slug -> metaBytes
	bOrder  = []byte("idx_order") // positionKey -> 1
	bIdxTag = []byte("idx_tag")   // tag -> sub-bucket of positionKey -> 1
	bInfo   = []byte("info")      // build bookkeeping

	kCount = []byte("count")
)
