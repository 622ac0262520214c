// Package register registers all relevant Boards.
package register

import (
	// for boards.
	_ "github.com/chipurobo/rdk/components/board/fake"
	_ "github.com/chipurobo/rdk/components/board/genericlinux"
	_ "github.com/chipurobo/rdk/components/board/periph"
)
