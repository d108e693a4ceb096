package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"assetreport/internal/importer"
	"assetreport/internal/model"
)

var syncCmd = &cobra.Command{
	Use:   "sync [derived...]",
	Short: "同步重建派生报表表（默认全部）",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		names := args
		if len(names) == 0 {
			for _, d := range model.DerivedTables {
				names = append(names, d.Name)
			}
		}
		for _, name := range names {
			if err := a.rebuilder.Rebuild(cmd.Context(), name); err != nil {
				return fmt.Errorf("重建 %s 失败: %w", name, err)
			}
			fmt.Printf("已重建 %s\n", name)
		}
		return nil
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns <table>",
	Short: "查看表的业务列",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		spec, _ := model.LookupTable(args[0])
		cols, err := a.store.BusinessColumns(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for i, c := range cols {
			line := fmt.Sprintf("%2d  %-24s %s", i+1, c, spec.LabelFor(c))
			if f, ok := spec.DateFormatFor(c); ok {
				line += "  [" + string(f) + "]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <table> <file.xlsx>",
	Short: "离线追加上传表格",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		coordinator := importer.NewCoordinator(a.store, importer.WithLogger(a.logger))
		// 离线导入不走 HTTP，Ctrl+C 也不应中断事务
		ctx := context.WithoutCancel(cmd.Context())
		result, err := coordinator.Append(ctx, importer.AppendOptions{
			TableName: args[0],
			FilePath:  args[1],
			Filename:  filepath.Base(args[1]),
		})
		if err != nil {
			return err
		}

		fmt.Println(importer.Message(result))
		for _, w := range result.Warnings {
			fmt.Println("  警告:", w)
		}

		for _, d := range a.rebuilder.DerivedFor(args[0]) {
			if err := a.rebuilder.Rebuild(ctx, d.Name); err != nil {
				a.logger.WithError(&model.DownstreamSyncError{Table: d.Name, Err: err}).Error("derived rebuild failed")
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Rows)
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "后台用户管理",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "新增后台用户",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.Close()

		u, err := a.store.CreateUser(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("已创建用户 %s (id=%d)\n", u.Username, u.ID)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
}
