//go:build !unix

package speech

import (
	"errors"
	"os"
)

var errNoPause = errors.New("pause is not supported on this platform")

func pauseProcess(*os.Process) error { return errNoPause }

func resumeProcess(*os.Process) error { return errNoPause }
