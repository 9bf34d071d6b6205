package qbt

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Tags for validate.Var. 0x7C is '|', the server's list separator.
const (
	tagHashes        = "required,min=1,dive,required,excludesall=0x7C"
	tagHash          = "required,excludesall=0x7C"
	tagRequired      = "required"
	tagNames         = "required,min=1,dive,required"
	tagTorrentLimit  = "gte=-1"
	tagGlobalLimit   = "gte=0"
	tagFilePriority  = "oneof=0 1 6 7"
	tagFileIDs       = "required,min=1,dive,gte=0"
	tagPeers         = "required,min=1,dive,required,excludesall=0x7C"
	tagDirectoryMode = "omitempty,oneof=dirs files all"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkVar validates a single argument; param names it in the error.
func checkVar(op Operation, param string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return validationError(op, param, err)
	}
	return nil
}

// checkStruct validates an options struct.
func checkStruct(op Operation, s any) error {
	if err := validate.Struct(s); err != nil {
		return validationError(op, "", err)
	}
	return nil
}

// checkVar and checkStruct on the client report a missing or rejected
// session before any parameter problem.
func (c *Client) checkVar(op Operation, param string, value any, tag string) error {
	if _, err := c.ensureAuthenticated(op); err != nil {
		return err
	}
	return checkVar(op, param, value, tag)
}

func (c *Client) checkStruct(op Operation, s any) error {
	if _, err := c.ensureAuthenticated(op); err != nil {
		return err
	}
	return checkStruct(op, s)
}

func validationError(op Operation, param string, err error) *ClientError {
	msg := err.Error()
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if param == "" {
			param = fe.Field()
		}
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s fails %s=%s", param, fe.Tag(), fe.Param())
		} else {
			msg = fmt.Sprintf("%s fails %s", param, fe.Tag())
		}
	}
	e := invalidParams(op, param, msg)
	e.Err = err
	return e
}
