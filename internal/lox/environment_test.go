package lox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironmentDefineGet(t *testing.T) {
	assert := assert.New(t)
	env := NewEnvironment(nil)

	env.Define("x", 1.0)
	val, err := env.Get(tokIdent("x", 1))

	assert.NoError(err)
	assert.Equal(1.0, val)
}

func TestEnvironmentGetWalksUpTheChain(t *testing.T) {
	assert := assert.New(t)
	outer := NewEnvironment(nil)
	inner := NewEnvironment(outer)

	outer.Define("x", 1.0)
	val, err := inner.Get(tokIdent("x", 1))

	assert.NoError(err)
	assert.Equal(1.0, val)
}

func TestEnvironmentShadowing(t *testing.T) {
	assert := assert.New(t)
	outer := NewEnvironment(nil)
	inner := NewEnvironment(outer)

	outer.Define("x", "outer")
	inner.Define("x", "inner")

	innerVal, err := inner.Get(tokIdent("x", 1))
	assert.NoError(err)
	assert.Equal("inner", innerVal)

	outerVal, err := outer.Get(tokIdent("x", 1))
	assert.NoError(err)
	assert.Equal("outer", outerVal)
}

func TestEnvironmentAssign(t *testing.T) {
	assert := assert.New(t)
	outer := NewEnvironment(nil)
	inner := NewEnvironment(outer)

	outer.Define("x", 1.0)
	err := inner.Assign(tokIdent("x", 1), 2.0)
	assert.NoError(err)

	val, err := outer.Get(tokIdent("x", 1))
	assert.NoError(err)
	assert.Equal(2.0, val)
}

func TestEnvironmentUndefined(t *testing.T) {
	assert := assert.New(t)
	env := NewEnvironment(nil)

	_, err := env.Get(tokIdent("x", 1))
	assert.EqualError(err, "Undefined variable 'x'.\n[line 1]")

	err = env.Assign(tokIdent("x", 1), 1.0)
	assert.EqualError(err, "Undefined variable 'x'.\n[line 1]")
}

func TestEnvironmentDistanceAddressing(t *testing.T) {
	assert := assert.New(t)
	global := NewEnvironment(nil)
	middle := NewEnvironment(global)
	inner := NewEnvironment(middle)

	global.Define("x", "global")
	middle.Define("x", "middle")
	inner.Define("x", "inner")

	assert.Equal("inner", inner.GetAt(0, "x"))
	assert.Equal("middle", inner.GetAt(1, "x"))
	assert.Equal("global", inner.GetAt(2, "x"))

	inner.AssignAt(1, tokIdent("x", 1), "changed")
	assert.Equal("changed", middle.GetAt(0, "x"))
}
