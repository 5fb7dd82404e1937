// SPDX-License-Identifier: EPL-2.0

package beat_test

import (
	"fmt"

	"github.com/ik5/audtl/beat"
)

func ExampleBeat_ToSample() {
	b := beat.New(120, 44100, 0.01)

	fmt.Println(b.ToSample(300))
	// Output: 27562
}

func ExampleBeat_BeatPositions() {
	b := beat.New(60, 1000, 0.1)

	for px := range b.BeatPositions(150, 450) {
		fmt.Println(px)
	}
	// Output:
	// 100
	// 200
	// 300
	// 400
}
