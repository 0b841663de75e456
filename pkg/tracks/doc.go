// Package tracks distributes interface pins over routing tracks.
//
// A [PinSpec] declares an ordered interface: scalar pins, buses, sub-ranges
// of a wider bus and padding slots. [PinSpec.Expand] flattens it into one
// name per track slot, with [Gap] marking padding. [Distribute] picks evenly
// spaced tracks of a routing [Grid] centered in an interval, and [Finalize]
// zips both sequences into an [Assignment], dropping the padding.
//
// Both sides of a physical interface declare their own PinSpec. Call
// [CheckAgreement] before distributing so that drift between the two
// declarations is reported instead of silently misaligning pins:
//
//	block, mux, err := tracks.CheckAgreement("block", blockSpec, "mux", muxSpec)
//	if err != nil {
//	    return err
//	}
//	ts, err := tracks.Distribute(len(block), 0, width, 0, grid)
//	if err != nil {
//	    return err
//	}
//	pins, err := tracks.Finalize(block, ts)
package tracks
