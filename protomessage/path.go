package protomessage

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/jhump/protoaccess/protoaccess"
	"github.com/jhump/protoaccess/protovalue"
)

// FormatPath renders a path, as given to the callbacks of Walk and
// WalkFields, using field names resolved against root. Fields are joined
// with dots and list indices and map keys are shown in brackets, for
// example `sub_map["x"].n` or `subs[2]`. Field numbers that cannot be
// resolved are shown as numbers.
func FormatPath(root *protoaccess.MessageDescriptor, path []any) string {
	var sb strings.Builder
	desc := root
	for _, elem := range path {
		switch e := elem.(type) {
		case protoreflect.FieldNumber:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			var field *protoaccess.FieldDescriptor
			if desc != nil {
				field = desc.FindFieldByNumber(e)
			}
			if field == nil {
				sb.WriteString(strconv.Itoa(int(e)))
				desc = nil
				continue
			}
			sb.WriteString(field.Name())
			desc = field.MessageDescriptor()
		case int:
			_, _ = fmt.Fprintf(&sb, "[%d]", e)
		case protovalue.Value:
			_, _ = fmt.Fprintf(&sb, "[%v]", e)
		default:
			_, _ = fmt.Fprintf(&sb, "[?%v]", e)
		}
	}
	return sb.String()
}
