package chat

import (
	"fmt"
	"math/rand/v2"
)

var (
	nicknameAdjectives = []string{
		"brisk", "calm", "candid", "cheerful", "chill", "clever", "cozy", "daring",
		"eager", "gentle", "glowing", "humble", "keen", "lucky", "merry", "nifty",
		"plucky", "quirky", "rapid", "snug", "spry", "sunny", "swift", "vivid",
	}
	nicknameAnimals = []string{
		"otter", "panda", "lynx", "koala", "falcon", "fox", "tiger", "badger",
		"heron", "narwhal", "yak", "eagle", "orca", "gecko", "lemur", "llama",
		"ram", "sparrow", "seal", "marten", "beaver", "ibis", "bison", "dingo",
	}
)

// RandomNickname returns an anonymous name such as "calm-otter-42".
func RandomNickname() string {
	return randomNickname(rand.IntN)
}

func randomNickname(intn func(n int) int) string {
	return fmt.Sprintf("%s-%s-%d",
		nicknameAdjectives[intn(len(nicknameAdjectives))],
		nicknameAnimals[intn(len(nicknameAnimals))],
		intn(100),
	)
}
