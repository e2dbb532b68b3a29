package ragadapter

import "hash/fnv"

const embeddingDims = 64

// hashEmbedding produces a deterministic, offline bag-of-words embedding:
// every token hashes into one of embeddingDims buckets, incremented once per
// occurrence. It exists only so chromem-go's collection has a well-formed
// vector to store per document; ranking itself is done by the BM25 index,
// not by cosine similarity over these vectors.
func hashEmbedding(text string) []float32 {
	vec := make([]float32, embeddingDims)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%embeddingDims]++
	}
	return vec
}
