package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/CtrlC703/himamikuji-bot/pkg/token"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// admsign 为管理接口生成一次性的签名请求头。
// 运维脚本用它来调用 /api/admin/reset 和 /api/admin/export：
//
//	eval $(admsign -action reset_all)
//	curl -X POST -H "X-Admin-Nonce: $NONCE" -H "X-Admin-Signature: $SIGNATURE" ...
func main() {
	action := flag.String("action", "", "管理动作名 (reset_all 或 export_sheet)")
	flag.Parse()

	if *action == "" {
		fmt.Fprintln(os.Stderr, "用法: admsign -action <reset_all|export_sheet>")
		os.Exit(2)
	}

	// 密钥与服务器共享，来自 .env 或环境变量
	godotenv.Load()
	secret := os.Getenv("ADMIN_SECRET")
	if err := token.SetSecret(secret); err != nil {
		fmt.Fprintf(os.Stderr, "ADMIN_SECRET 不可用: %v\n", err)
		os.Exit(1)
	}

	nonce := uuid.NewString()
	signature, err := token.GenerateAdminSignature(token.AdminPayload{
		Action: *action,
		Nonce:  nonce,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "生成签名失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("NONCE=%s\n", nonce)
	fmt.Printf("SIGNATURE=%s\n", signature)
}
