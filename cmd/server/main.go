// @title Ontario Triage API
// @version 1.0
// @description 安大略省医疗分诊：红旗规则 + 混合检索 + 引用生成
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
