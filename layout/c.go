package layout

// Scalar layouts of the ppc64le SysV C data model.
var (
	CBool    = Value(CarrierBool).WithName("bool")
	CChar    = Value(CarrierByte).WithName("char")
	CShort   = Value(CarrierShort).WithName("short")
	CInt     = Value(CarrierInt).WithName("int")
	CLong    = Value(CarrierLong).WithName("long")
	CFloat   = Value(CarrierFloat).WithName("float")
	CDouble  = Value(CarrierDouble).WithName("double")
	CPointer = Value(CarrierAddress).WithName("pointer")

	// JavaChar is an unsigned 16-bit code unit.
	JavaChar = Value(CarrierChar).WithName("jchar")
)
