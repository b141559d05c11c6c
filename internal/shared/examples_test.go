package shared_test

import (
	"database/sql"
	"errors"
	"fmt"

	"userapi/internal/shared"
)

func Example_markKind() {
	err := shared.MarkKind(sql.ErrNoRows, shared.KindNotFound)

	fmt.Println(err)
	fmt.Println(shared.KindOf(err))
	fmt.Println(errors.Is(err, sql.ErrNoRows))

	// Output:
	// not found: sql: no rows in result set
	// NotFound
	// true
}

func Example_wrapf() {
	err := shared.Wrapf(errors.New("connection refused"), "load user %d", 7)
	fmt.Println(err)

	// Output:
	// load user 7: connection refused
}
