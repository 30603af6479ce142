// Package lookup collects the methods that can be invoked on a type,
// merging methods that override one another.
package lookup

import (
	"github.com/daimatz/jrebase/pkg/description"
	log "github.com/sirupsen/logrus"
)

// overriddenClassMethod is a method that overrides a method of a super
// class. It reads as the overriding method, except that it is
// specializable wherever either method is.
type overriddenClassMethod struct {
	description.Method
	overridden description.Method
}

// OverriddenClassMethodOf merges overriding with the super class method
// it overrides.
func OverriddenClassMethodOf(overriding, overridden description.Method) description.Method {
	return &overriddenClassMethod{Method: overriding, overridden: overridden}
}

// IsSpecializableFor asks both methods on every call.
func (m *overriddenClassMethod) IsSpecializableFor(t description.Type) bool {
	overriding := m.Method.IsSpecializableFor(t)
	overridden := m.overridden.IsSpecializableFor(t)
	return overriding || overridden
}

// Finding is the result of processing a type.
type Finding struct {
	Type description.Type
	// InvokableMethods holds the methods declared by Type first, then the
	// inherited ones in walk order.
	InvokableMethods description.MethodList
	// DefaultMethods holds the default methods of every interface of Type
	// by interface internal name.
	DefaultMethods map[string]description.MethodList
}

// Engine walks type hierarchies.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Process collects the invokable methods of t.
func (e *Engine) Process(t description.Type) Finding {
	c := newCollector()
	for _, m := range t.DeclaredMethods() {
		c.add(m)
	}

	interfaces := append(description.TypeList{}, t.Interfaces()...)
	for super := t.SuperType(); super != nil; super = super.SuperType() {
		for _, m := range super.DeclaredMethods() {
			if !isInherited(m, t) {
				continue
			}
			if i, ok := c.index[m.UniqueSignature()]; ok {
				c.methods[i] = OverriddenClassMethodOf(c.methods[i], m)
				continue
			}
			c.add(m)
		}
		interfaces = append(interfaces, super.Interfaces()...)
	}

	defaults := make(map[string]description.MethodList)
	seen := make(map[string]bool)
	for len(interfaces) > 0 {
		iface := interfaces[0]
		interfaces = interfaces[1:]
		if seen[iface.InternalName()] {
			continue
		}
		seen[iface.InternalName()] = true

		for _, m := range iface.DeclaredMethods() {
			if !isInherited(m, t) {
				continue
			}
			if m.IsDefaultMethod() {
				defaults[iface.InternalName()] = append(defaults[iface.InternalName()], m)
			}
			if _, ok := c.index[m.UniqueSignature()]; !ok {
				c.add(m)
			}
		}
		interfaces = append(interfaces, iface.Interfaces()...)
	}

	log.WithFields(log.Fields{
		"type":       t.Name(),
		"methods":    len(c.methods),
		"interfaces": len(seen),
	}).Debug("Processed type")
	return Finding{Type: t, InvokableMethods: c.methods, DefaultMethods: defaults}
}

// isInherited reports whether m is a member of its subtype t. Package-private
// methods are only inherited within their package.
func isInherited(m description.Method, t description.Type) bool {
	if !m.IsMethod() || m.IsPrivate() || m.IsStatic() {
		return false
	}
	return !m.IsPackagePrivate() || m.DeclaringType().IsSamePackage(t)
}

type collector struct {
	methods description.MethodList
	index   map[string]int
}

func newCollector() *collector {
	return &collector{index: make(map[string]int)}
}

func (c *collector) add(m description.Method) {
	c.index[m.UniqueSignature()] = len(c.methods)
	c.methods = append(c.methods, m)
}
