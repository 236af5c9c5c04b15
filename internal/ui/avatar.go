package ui

import (
	"strings"

	"github.com/koscakluka/ema-tutor/core/expression"
)

const avatarWidth = 20

var (
	sombrero = []string{
		"     _____     ",
		" ___/_____\\___ ",
	}

	faces = map[string][]string{
		expression.AnimationIdle: {
			"   ( o   o )   ",
			"   (   -   )   ",
		},
		expression.AnimationTalking: {
			"   ( o   o )   ",
			"   (   O   )   ",
		},
		expression.AnimationHappy: {
			"   ( ^   ^ )   ",
			"   (  \\_/  )   ",
		},
		expression.AnimationThinking: {
			"   ( o   O )   ",
			"   (  ...  )   ",
		},
	}
)

// renderAvatar draws Pablo playing the given animation, labelled with the
// expression he is in.
func renderAvatar(animation string, current expression.Expression) string {
	face, ok := faces[animation]
	if !ok {
		face = faces[expression.AnimationIdle]
	}

	lines := append(append([]string{}, sombrero...), face...)
	lines = append(lines, "", "Pablo", HeaderStyle.Render(string(current)))
	return AvatarStyle.Width(avatarWidth).Render(strings.Join(lines, "\n"))
}
