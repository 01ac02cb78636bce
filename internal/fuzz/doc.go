// Package fuzztests houses Go fuzz harnesses for the repair pipeline
// (source -> lexer -> classify/balance -> rules -> fix). Its goal is to smoke
// test robustness and the repair guarantees on arbitrary inputs.
//
// Назначение: прогонять байты через сканер и полный цикл починки, проверяя,
// что литералы не меняются, а результат Fixed действительно сбалансирован.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/driver,
// internal/testkit.
package fuzztests
