package protowire

import (
	"testing"
)

func TestEncodeDecodeFields(t *testing.T) {
	e := NewEncoder()
	e.EncodeVarint(1, -7)
	e.EncodeBoolForce(2, false)
	e.EncodeString(3, "olá")
	e.EncodeFixed32(4, 1.5)
	e.EncodePackedVarint(5, []int32{1, -2, 300})
	e.EncodePackedBool(6, []bool{true, false, true})

	d := NewDecoder(e.Bytes())
	seen := map[int]bool{}
	for !d.Done() {
		num, wt, err := d.ReadTag()
		if err != nil {
			t.Fatalf("ReadTag: %v", err)
		}
		seen[num] = true
		switch num {
		case 1:
			v, err := d.ReadVarint()
			if err != nil || v != -7 {
				t.Errorf("campo 1 = %d, %v", v, err)
			}
		case 2:
			v, err := d.ReadBool()
			if err != nil || v {
				t.Errorf("campo 2 = %v, %v", v, err)
			}
		case 3:
			v, err := d.ReadString()
			if err != nil || v != "olá" {
				t.Errorf("campo 3 = %q, %v", v, err)
			}
		case 4:
			v, err := d.ReadFixed32()
			if err != nil || v != 1.5 {
				t.Errorf("campo 4 = %v, %v", v, err)
			}
		case 5:
			v, err := d.ReadPackedVarint()
			if err != nil || len(v) != 3 || v[1] != -2 || v[2] != 300 {
				t.Errorf("campo 5 = %v, %v", v, err)
			}
		case 6:
			v, err := d.ReadPackedBool()
			if err != nil || len(v) != 3 || !v[0] || v[1] || !v[2] {
				t.Errorf("campo 6 = %v, %v", v, err)
			}
		default:
			t.Errorf("campo inesperado %d (wire %d)", num, wt)
		}
	}
	if len(seen) != 6 {
		t.Errorf("campos lidos = %v", seen)
	}
}

func TestZeroValuesOmitted(t *testing.T) {
	e := NewEncoder()
	e.EncodeVarint(1, 0)
	e.EncodeBool(2, false)
	e.EncodeString(3, "")
	e.EncodeFixed32(4, 0)
	e.EncodePackedVarint(5, nil)
	if n := len(e.Bytes()); n != 0 {
		t.Errorf("esperava buffer vazio, tem %d bytes", n)
	}
}

func TestSkipField(t *testing.T) {
	e := NewEncoder()
	e.EncodeString(1, "ignorado")
	e.EncodeFixed32(2, 3)
	e.EncodeVarint(3, 42)

	d := NewDecoder(e.Bytes())
	for i := 0; i < 2; i++ {
		_, wt, err := d.ReadTag()
		if err != nil {
			t.Fatal(err)
		}
		if err := d.SkipField(wt); err != nil {
			t.Fatalf("SkipField: %v", err)
		}
	}
	num, _, _ := d.ReadTag()
	v, err := d.ReadVarint()
	if num != 3 || v != 42 || err != nil {
		t.Errorf("depois de pular: campo %d = %d, %v", num, v, err)
	}
	if err := d.SkipField(7); err == nil {
		t.Errorf("wire type 7 deveria falhar")
	}
}

func TestTruncatedInput(t *testing.T) {
	e := NewEncoder()
	e.EncodeString(1, "mensagem longa")
	data := e.Bytes()

	d := NewDecoder(data[:len(data)-3])
	if _, _, err := d.ReadTag(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadString(); err == nil {
		t.Errorf("esperava erro em bytes truncados")
	}
}
