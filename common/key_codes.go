package common

// Key codes as reported by GLFW: printable keys use their uppercase ASCII value.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32

	Key0 = 48
	Key1 = 49
	Key2 = 50

	KeyA = 65
	KeyD = 68
	KeyE = 69
	KeyG = 71
	KeyQ = 81
	KeyS = 83
	KeyT = 84
	KeyV = 86
	KeyW = 87
	KeyX = 88

	KeyEsc = 256
)

// Mouse buttons, matching GLFW mouse button numbers.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
