package datafetcher

import "reflect"

func classesOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
