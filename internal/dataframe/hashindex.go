package dataframe

import (
	xxhash "github.com/cespare/xxhash/v2"
)

const (
	hashIndexLoadFactor     = 0.75
	hashIndexGrowthFactor   = 2
	hashIndexCapacityFactor = 1.3
)

// hashIndex maps composite row keys to row indices using xxhash, avoiding
// the per-key allocation overhead of a plain map for large build sides.
type hashIndex struct {
	buckets  [][]hashIndexEntry
	capacity int
	size     int
}

type hashIndexEntry struct {
	key  string
	rows []int
}

// newHashIndex sizes the index for an estimated number of distinct keys.
func newHashIndex(estimatedSize int) *hashIndex {
	capacity := nextPowerOfTwo(int(float64(estimatedSize) * hashIndexCapacityFactor))
	return &hashIndex{
		buckets:  make([][]hashIndexEntry, capacity),
		capacity: capacity,
	}
}

// add appends a row index under key and reports whether the key is new.
func (ix *hashIndex) add(key string, row int) bool {
	bucketIdx := ix.bucketFor(key)

	for i := range ix.buckets[bucketIdx] {
		if ix.buckets[bucketIdx][i].key == key {
			ix.buckets[bucketIdx][i].rows = append(ix.buckets[bucketIdx][i].rows, row)
			return false
		}
	}

	ix.buckets[bucketIdx] = append(ix.buckets[bucketIdx], hashIndexEntry{
		key:  key,
		rows: []int{row},
	})
	ix.size++

	if float64(ix.size) > float64(ix.capacity)*hashIndexLoadFactor {
		ix.resize()
	}
	return true
}

// lookup returns the row indices stored under key.
func (ix *hashIndex) lookup(key string) ([]int, bool) {
	bucketIdx := ix.bucketFor(key)
	for _, entry := range ix.buckets[bucketIdx] {
		if entry.key == key {
			return entry.rows, true
		}
	}
	return nil, false
}

func (ix *hashIndex) bucketFor(key string) int {
	// capacity is always a positive power of two
	return int(xxhash.Sum64String(key) & uint64(ix.capacity-1))
}

// resize doubles the capacity and rehashes all entries.
func (ix *hashIndex) resize() {
	newCapacity := ix.capacity * hashIndexGrowthFactor
	newBuckets := make([][]hashIndexEntry, newCapacity)

	for _, bucket := range ix.buckets {
		for _, entry := range bucket {
			idx := int(xxhash.Sum64String(entry.key) & uint64(newCapacity-1))
			newBuckets[idx] = append(newBuckets[idx], entry)
		}
	}

	ix.buckets = newBuckets
	ix.capacity = newCapacity
}

// nextPowerOfTwo returns the next power of two >= n.
func nextPowerOfTwo(n int) int {
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
