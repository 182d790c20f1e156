package arena

import (
	"errors"
	"fmt"
)

// Example demonstrates fixed-block allocation
func Example() {
	// Four blocks of 16 bytes each
	a := New[byte](16, 4)

	buf, err := a.Allocate(10)
	if err != nil {
		panic(err)
	}
	copy(buf, "0123456789")
	fmt.Printf("len=%d cap=%d in use=%d\n", len(buf), cap(buf), a.InUse())

	// Requests larger than a block fail
	_, err = a.Allocate(17)
	fmt.Println(errors.Is(err, ErrBadAlloc))

	// Give the block back
	if err := a.Deallocate(buf); err != nil {
		panic(err)
	}
	m := a.Metrics()
	fmt.Printf("in use=%d highest=%d ops=%d\n", m.InUse, m.Highest, m.TotalOps)

	// Output:
	// len=10 cap=16 in use=1
	// true
	// in use=0 highest=1 ops=2
}
