// Worker là CLI parse địa chỉ hàng loạt từ file và export danh mục hành chính.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
