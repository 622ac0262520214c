package utils

import (
	"testing"
	"time"

	"go.viam.com/test"
)

type attrConfig struct {
	Name     string        `json:"name"`
	Rate     float64       `json:"rate"`
	Interval time.Duration `json:"interval"`
	Pins     []string      `json:"pins"`
}

func TestTransformAttributeMapToStruct(t *testing.T) {
	conf := &attrConfig{}
	_, err := TransformAttributeMapToStruct(conf, AttributeMap{
		"name":     "left",
		"rate":     "2.5",
		"interval": "10ms",
		"pins":     []interface{}{"5", "6"},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf.Name, test.ShouldEqual, "left")
	test.That(t, conf.Rate, test.ShouldEqual, 2.5)
	test.That(t, conf.Interval, test.ShouldEqual, 10*time.Millisecond)
	test.That(t, conf.Pins, test.ShouldResemble, []string{"5", "6"})

	_, err = TransformAttributeMapToStruct(&attrConfig{}, AttributeMap{"nmae": "left"})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "nmae")

	_, err = TransformAttributeMapToStruct(&attrConfig{}, AttributeMap{"rate": "fast"})
	test.That(t, err, test.ShouldNotBeNil)

	am := AttributeMap{"name": "x"}
	test.That(t, am.Has("name"), test.ShouldBeTrue)
	test.That(t, am.Has("rate"), test.ShouldBeFalse)
}

func TestUnknownModelError(t *testing.T) {
	test.That(t, NewUnknownModelError("board", "pi9").Error(), test.ShouldEqual, `unknown board model "pi9"`)
}
