package model

import (
	"go-ml.dev/pkg/iokit"
	"go-ml.dev/pkg/zorros/zorros"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

/*
Spec describes a forecaster to build by the registry
*/
type Spec struct {
	Name      string `yaml:"name"`
	Strategy  string `yaml:"strategy,omitempty"`
	Regressor string `yaml:"regressor,omitempty"`
	Params    Params `yaml:"params,omitempty"`
	// Members are the ensemble members or the final forecaster of a transformed target
	Members []Spec `yaml:"members,omitempty"`
	// Transformers are the target transformers applied before the final forecaster
	Transformers []Spec `yaml:"transformers,omitempty"`
}

/*
With returns copy of the spec with params overridden by p
*/
func (s Spec) With(p Params) Spec {
	q := Params{}
	for k, v := range s.Params {
		q[k] = v
	}
	for k, v := range p {
		q[k] = v
	}
	s.Params = q
	return s
}

/*
Path returns the absolute path of the model file,
relative names are placed into the go-ml cache
*/
func Path(s string) string {
	if filepath.IsAbs(s) {
		return s
	}
	return iokit.CacheFile(filepath.Join("go-ml", "Forecasters", s))
}

/*
Params is a set of hyper-parameters used by the grid search to generate new forecaster
*/
type Params map[string]float64

/*
Get value of the parameter by name if exists and dflt value otherwise
*/
func (p Params) Get(name string, dflt float64) float64 {
	if v, ok := p[name]; ok {
		return v
	}
	return dflt
}

// Int is Get converted to integer
func (p Params) Int(name string, dflt int) int {
	return int(p.Get(name, float64(dflt)))
}

// Bool is true when the parameter is not zero
func (p Params) Bool(name string, dflt bool) bool {
	d := 0.
	if dflt {
		d = 1
	}
	return p.Get(name, d) != 0
}

/*
Keys returns sorted names of parameters
*/
func (p Params) Keys() []string {
	r := make([]string, 0, len(p))
	for k := range p {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

/*
Sub returns parameters with the prefix followed by a dot, the prefix is removed
*/
func (p Params) Sub(prefix string) Params {
	r := Params{}
	for k, v := range p {
		if strings.HasPrefix(k, prefix+".") {
			r[k[len(prefix)+1:]] = v
		}
	}
	return r
}

func fieldKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

/*
Fields maps exported numeric fields of the structure to their addresses,
names are lowercased with underscores removed so window_length matches WindowLength
*/
func Fields(x interface{}) map[string]reflect.Value {
	v := reflect.ValueOf(x)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		panic(zorros.Panic(zorros.Errorf("pointer to struct is required, got %T", x)))
	}
	v = v.Elem()
	m := map[string]reflect.Value{}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		switch f.Type.Kind() {
		case reflect.Float32, reflect.Float64, reflect.Bool,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			m[fieldKey(f.Name)] = v.Field(i).Addr()
		}
	}
	return m
}

/*
Apply sets parameters to the fields returned by Fields
*/
func (p Params) Apply(m map[string]reflect.Value) error {
	for _, k := range p.Keys() {
		ref, ok := m[fieldKey(k)]
		if !ok {
			return zorros.Errorf("model does not have field `%v`", k)
		}
		e := ref.Elem()
		switch e.Kind() {
		case reflect.Bool:
			e.SetBool(p[k] != 0)
		case reflect.Float32, reflect.Float64:
			e.SetFloat(p[k])
		default:
			e.SetInt(int64(p[k]))
		}
	}
	return nil
}

/*
LuckyApply applies parameters to the structure fields and panics on error
*/
func (p Params) LuckyApply(x interface{}) {
	if err := p.Apply(Fields(x)); err != nil {
		panic(zorros.Panic(err))
	}
}
