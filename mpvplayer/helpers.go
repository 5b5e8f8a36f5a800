// Copyright 2023 The STMPS Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpvplayer

import (
	"errors"
	"fmt"

	"github.com/spezifisch/mpvbridge/libmpv"
)

var errNilValue = errors.New("nil value")

func (p *Player) getPropertyInt64(name string) (int64, error) {
	value, err := p.instance.GetProperty(name, libmpv.FormatInt64)
	if err != nil {
		return 0, err
	} else if value == nil {
		return 0, errNilValue
	}
	i, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("%s: unexpected %T", name, value)
	}
	return i, nil
}

func (p *Player) getPropertyBool(name string) (bool, error) {
	value, err := p.instance.GetProperty(name, libmpv.FormatFlag)
	if err != nil {
		return false, err
	} else if value == nil {
		return false, errNilValue
	}
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected %T", name, value)
	}
	return b, nil
}

func (p *Player) getPropertyDouble(name string) (float64, error) {
	value, err := p.instance.GetProperty(name, libmpv.FormatDouble)
	if err != nil {
		return 0, err
	} else if value == nil {
		return 0, errNilValue
	}
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("%s: unexpected %T", name, value)
	}
	return f, nil
}

func (p *Player) getPropertyString(name string) (string, error) {
	value, err := p.instance.GetProperty(name, libmpv.FormatString)
	if err != nil {
		return "", err
	} else if value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected %T", name, value)
	}
	return s, nil
}
