package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451 // delete/update of a parent still referenced
	mysqlNoReferencedRow  = 1452 // insert/update pointing at a missing parent
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow2 = 1216
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlCode(err) == mysqlDuplicateEntry }

// translateFK maps foreign-key violations onto the error taxonomy: a missing
// parent is bad input, a referenced parent is a conflict. Other errors pass
// through unchanged.
func translateFK(err error, what string) error {
	switch mysqlCode(err) {
	case mysqlNoReferencedRow, mysqlNoReferencedRow2:
		return Errorf(ErrInvalid, "%s references a record that does not exist", what)
	case mysqlRowIsReferenced, mysqlRowIsReferenced2:
		return Errorf(ErrConflict, "%s is still referenced by other records", what)
	}
	return err
}
