package domain

// seatRotation maps each seat to the one that acts next. Seats 0..3 are
// fixed physical table positions and play proceeds anticlockwise around
// them, so the successor is this permutation, not an index decrement.
var seatRotation = [4]int32{0: 3, 1: 2, 2: 0, 3: 1}

// NextSeat returns the seat that acts after the given one. Seat must be in
// 0..3.
func NextSeat(seat int32) int32 {
	return seatRotation[seat]
}
