package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// Loadenv loads .env into the process environment. A missing file is not an
// error; variables already set in the environment win.
func Loadenv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}
