package ranch

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// IDKind tells which ID space is used: nodes or links
type IDKind uint16

const (
	ID_NODE = IDKind(iota + 1)
	ID_LINK
)

func (iotaIdx IDKind) String() string {
	names := [...]string{"node", "link"}
	if iotaIdx == 0 || int(iotaIdx) > len(names) {
		return "undefined"
	}
	return names[iotaIdx-1]
}

func (iotaIdx IDKind) MarshalText() ([]byte, error) {
	return []byte(iotaIdx.String()), nil
}

// CountyRange is a half-open interval [Start, End) of IDs reserved for a county
type CountyRange struct {
	Start int64 `toml:"start" yaml:"start" json:"start"`
	End   int64 `toml:"end" yaml:"end" json:"end"`
}

// Size returns number of IDs in range
func (r CountyRange) Size() int64 {
	return r.End - r.Start
}

// Contains checks if ID lies in range
func (r CountyRange) Contains(id int64) bool {
	return id >= r.Start && id < r.End
}

func (r CountyRange) overlaps(other CountyRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// CountyRanges is a mapping from county name to its ID range
type CountyRanges map[string]CountyRange

// Counties returns sorted county names
func (ranges CountyRanges) Counties() []string {
	names := make([]string, 0, len(ranges))
	for name := range ranges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every range is non-empty and no two ranges overlap
func (ranges CountyRanges) Validate() error {
	names := ranges.Counties()
	for i, name := range names {
		rng := ranges[name]
		if rng.Start >= rng.End {
			return errors.Errorf("range of county '%s' is empty: [%d, %d)", name, rng.Start, rng.End)
		}
		for _, otherName := range names[i+1:] {
			if rng.overlaps(ranges[otherName]) {
				other := ranges[otherName]
				return errors.Errorf("ranges of counties '%s' [%d, %d) and '%s' [%d, %d) overlap", name, rng.Start, rng.End, otherName, other.Start, other.End)
			}
		}
	}
	return nil
}

type partitionKey struct {
	county string
	kind   IDKind
}

// idCursor is the state of a single (county, kind) partition
type idCursor struct {
	sync.Mutex
	rng    CountyRange
	next   int64
	issued int
}

// IDAllocator issues unique IDs from disjoint per-county ranges.
//
// Every (county, kind) partition has its own cursor and lock: calls for different partitions
// may run concurrently, calls within a partition are serialized.
type IDAllocator struct {
	cursors map[partitionKey]*idCursor
}

// NewIDAllocator creates allocator for given node and link ranges
func NewIDAllocator(nodeRanges, linkRanges CountyRanges) (*IDAllocator, error) {
	if err := nodeRanges.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad node ranges")
	}
	if err := linkRanges.Validate(); err != nil {
		return nil, errors.Wrap(err, "Bad link ranges")
	}
	alloc := &IDAllocator{
		cursors: make(map[partitionKey]*idCursor, len(nodeRanges)+len(linkRanges)),
	}
	for county, rng := range nodeRanges {
		alloc.cursors[partitionKey{county, ID_NODE}] = &idCursor{rng: rng, next: rng.Start}
	}
	for county, rng := range linkRanges {
		alloc.cursors[partitionKey{county, ID_LINK}] = &idCursor{rng: rng, next: rng.Start}
	}
	return alloc, nil
}

// Allocate returns next ID for given county and kind
func (alloc *IDAllocator) Allocate(county string, kind IDKind) (int64, error) {
	cursor, ok := alloc.cursors[partitionKey{county, kind}]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownCounty, "no %s range for county '%s'", kind, county)
	}
	cursor.Lock()
	defer cursor.Unlock()
	if cursor.next >= cursor.rng.End {
		return 0, &RangeExhaustedError{
			County: county,
			Kind:   kind,
			Range:  cursor.rng,
			Issued: cursor.issued,
		}
	}
	id := cursor.next
	cursor.next++
	cursor.issued++
	return id, nil
}

// Has checks if allocator knows the county for given kind
func (alloc *IDAllocator) Has(county string, kind IDKind) bool {
	_, ok := alloc.cursors[partitionKey{county, kind}]
	return ok
}

// AllocationMark is a state of a single partition
type AllocationMark struct {
	County string      `json:"county"`
	Kind   IDKind      `json:"kind"`
	Range  CountyRange `json:"range"`
	// Last issued ID. Equals Range.Start-1 when nothing has been issued
	HighWater int64 `json:"high_water"`
	Issued    int   `json:"issued"`
}

// HighWaterMarks returns state of every partition, sorted by kind then county
func (alloc *IDAllocator) HighWaterMarks() []AllocationMark {
	marks := make([]AllocationMark, 0, len(alloc.cursors))
	for key, cursor := range alloc.cursors {
		cursor.Lock()
		marks = append(marks, AllocationMark{
			County:    key.county,
			Kind:      key.kind,
			Range:     cursor.rng,
			HighWater: cursor.next - 1,
			Issued:    cursor.issued,
		})
		cursor.Unlock()
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].Kind != marks[j].Kind {
			return marks[i].Kind < marks[j].Kind
		}
		return marks[i].County < marks[j].County
	})
	return marks
}
