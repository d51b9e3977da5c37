package lox

import "fmt"

// Class is the runtime representation of a Lox class. Calling a class
// constructs a new instance of it.
type Class struct {
	name          string
	superclass    *Class
	methods       map[string]*Function
	staticMethods map[string]*Function
}

func NewClass(
	name string,
	superclass *Class,
	methods map[string]*Function,
	staticMethods map[string]*Function,
) *Class {
	class := new(Class)
	class.name = name
	class.superclass = superclass
	class.methods = methods
	class.staticMethods = staticMethods
	return class
}

// findMethod looks up a method by name, walking up the superclass chain when
// the class does not declare the method itself.
func (class *Class) findMethod(name string) *Function {
	if method, ok := class.methods[name]; ok {
		return method
	}
	if class.superclass != nil {
		return class.superclass.findMethod(name)
	}
	return nil
}

// findStaticMethod looks up a method declared with the class keyword. Static
// methods are inherited like regular methods.
func (class *Class) findStaticMethod(name string) *Function {
	if method, ok := class.staticMethods[name]; ok {
		return method
	}
	if class.superclass != nil {
		return class.superclass.findStaticMethod(name)
	}
	return nil
}

// Get returns the static method with the given name. Classes only expose
// static methods as properties.
func (class *Class) Get(name *Token) (interface{}, error) {
	if method := class.findStaticMethod(name.Lexeme); method != nil {
		return method, nil
	}
	msg := fmt.Sprintf("Undefined property '%s'.", name.Lexeme)
	return nil, NewRuntimeError(name, msg)
}

// Arity returns the number of parameters of the initializer, or zero when
// the class has none.
func (class *Class) Arity() int {
	if init := class.findMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a new instance of the class and runs its initializer when
// one is declared.
func (class *Class) Call(
	interpreter *Interpreter,
	args []interface{},
) (interface{}, error) {
	instance := NewInstance(class)
	if init := class.findMethod("init"); init != nil {
		if _, err := init.bind(instance).Call(interpreter, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

func (class *Class) String() string {
	return class.name
}

// Instance is the runtime representation of an object constructed from a Lox
// class. State lives in the fields map, behavior lives on the class.
type Instance struct {
	class  *Class
	fields map[string]interface{}
}

func NewInstance(class *Class) *Instance {
	instance := new(Instance)
	instance.class = class
	instance.fields = make(map[string]interface{})
	return instance
}

// Get returns the field with the given name, or the method with that name
// bound to the instance when no field shadows it.
func (instance *Instance) Get(name *Token) (interface{}, error) {
	if value, ok := instance.fields[name.Lexeme]; ok {
		return value, nil
	}
	if method := instance.class.findMethod(name.Lexeme); method != nil {
		return method.bind(instance), nil
	}
	msg := fmt.Sprintf("Undefined property '%s'.", name.Lexeme)
	return nil, NewRuntimeError(name, msg)
}

// Set binds a value to a field, creating the field when it does not exist.
func (instance *Instance) Set(name *Token, value interface{}) {
	instance.fields[name.Lexeme] = value
}

func (instance *Instance) String() string {
	return fmt.Sprintf("%s instance", instance.class.name)
}
